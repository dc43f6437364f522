// Package cupom expõe o ciclo de vida do cupom fiscal (abrir, itens,
// totalizar, pagamentos, fechar) sobre um driver de impressora fiscal.
package cupom

import "github.com/shopspring/decimal"

// MetodoPagamento é a forma de pagamento enviada à impressora.
type MetodoPagamento int

const (
	PagamentoDinheiro MetodoPagamento = iota + 1
	PagamentoCheque
)

// Unidade é a unidade de comercialização do item.
type Unidade int

const (
	UnidadeVazia Unidade = iota
	UnidadePeso
	UnidadeMetros
	UnidadeLitros
	// UnidadePersonalizada usa a descrição de duas posições informada no
	// item.
	UnidadePersonalizada
)

// CodigoImposto é a constante de imposto do item ou da totalização.
type CodigoImposto int

const (
	ImpostoNenhum CodigoImposto = iota + 1
	ImpostoIsento
	ImpostoICMS
	ImpostoSubstituicao
	ImpostoIOF
)

// Item são os dados de um item do cupom. Desconto e acréscimo são
// mutuamente exclusivos.
type Item struct {
	Codigo           string
	Descricao        string
	Quantidade       decimal.Decimal
	PrecoUnitario    decimal.Decimal
	Unidade          Unidade
	UnidadeDescricao string
	Imposto          CodigoImposto
	Desconto         decimal.Decimal
	Acrescimo        decimal.Decimal
}

// Driver é o contrato implementado pelos drivers de impressora fiscal
// (mp25.MP25 e o driver simulado). Toda chamada é bloqueante: um comando,
// uma resposta, dentro do timeout do transporte.
type Driver interface {
	// AbrirCupom abre um cupom no equipamento. O estado "cupom já aberto"
	// vem do próprio equipamento, não de uma flag local.
	AbrirCupom() error

	// AdicionarItem envia o item e devolve o identificador atribuído pelo
	// equipamento, usado em cancelamentos posteriores.
	AdicionarItem(item Item) (int, error)

	// CancelarItem cancela o item de identificador informado; zero cancela
	// o último item adicionado.
	CancelarItem(id int) error

	// Totalizar aplica desconto ou acréscimo e devolve o valor totalizado
	// lido de volta do equipamento, que é a fonte autoritativa.
	Totalizar(desconto, acrescimo decimal.Decimal, imposto CodigoImposto) (decimal.Decimal, error)

	// AdicionarPagamento registra um pagamento no cupom.
	AdicionarPagamento(metodo MetodoPagamento, valor decimal.Decimal, descricao string) error

	// FecharCupom encerra o cupom e devolve o número atribuído pelo
	// equipamento.
	FecharCupom(mensagem string) (int, error)

	// CancelarCupom cancela o cupom em aberto.
	CancelarCupom() error

	// IdentificarCliente guarda os dados do consumidor para o próximo
	// cupom aberto.
	IdentificarCliente(nome, endereco, documento string)

	// LeituraX imprime o relatório de leitura X.
	LeituraX() error

	// ReducaoZ imprime a redução Z e encerra o movimento do dia.
	ReducaoZ() error

	// Suprimento registra entrada de dinheiro no caixa.
	Suprimento(valor decimal.Decimal) error

	// Sangria registra retirada de dinheiro do caixa.
	Sangria(valor decimal.Decimal) error
}
