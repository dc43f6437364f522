package nfe

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoDocumento identifica o documento da pessoa: pessoa jurídica (CNPJ) ou
// pessoa física (CPF). A variante é resolvida uma única vez, ao carregar os
// dados da pessoa, e não durante a serialização.
type TipoDocumento int

const (
	DocCNPJ TipoDocumento = iota + 1
	DocCPF
)

// Documento carrega o documento da pessoa já tipado.
type Documento struct {
	Tipo   TipoDocumento
	Numero string
}

// Endereco é o endereço postal usado nos grupos enderEmit/enderDest.
type Endereco struct {
	Logradouro  string
	Numero      string
	Complemento string
	Bairro      string
	Municipio   string
	UF          string
	CEP         string
	Telefone    string
}

// Pessoa representa emitente, destinatário ou transportadora.
type Pessoa struct {
	Nome              string
	Documento         Documento
	InscricaoEstadual string
	Endereco          Endereco
}

// RegimeTributario é a constante de imposto configurada para o item da venda.
type RegimeTributario int

const (
	// RegimeIsento emite o grupo ICMS40 com CST 40.
	RegimeIsento RegimeTributario = iota + 1
	// RegimeNaoTributado emite o grupo ICMS40 com CST 41.
	RegimeNaoTributado
	// RegimeICMSIntegral (CST 00) ainda não é suportado pelo gerador.
	RegimeICMSIntegral
	// RegimeSubstituicao (CST 10) ainda não é suportado pelo gerador.
	RegimeSubstituicao
)

// ItemVenda é um item da venda. Quantidade e preço ficam em decimal e só são
// formatados com casas fixas no momento da serialização.
type ItemVenda struct {
	Codigo        string
	Descricao     string
	CodigoBarras  string
	NCM           string
	ExTIPI        string
	Genero        string
	Unidade       string
	Quantidade    decimal.Decimal
	PrecoUnitario decimal.Decimal
	Regime        RegimeTributario

	// PesoUnitario, quando informado, gera o grupo vol (X26) com o peso
	// líquido/bruto do item.
	PesoUnitario decimal.Decimal
}

// Total retorna o valor total do item (quantidade × preço unitário).
func (i ItemVenda) Total() decimal.Decimal {
	return i.Quantidade.Mul(i.PrecoUnitario)
}

// Pagamento é uma parcela da venda, exportada como duplicata (Y07).
type Pagamento struct {
	Numero     string
	Vencimento time.Time
	Valor      decimal.Decimal
}

// Venda reúne os dados necessários para emitir uma NF-e. Os objetos de
// domínio da aplicação (venda, filial, cliente) são achatados nessa estrutura
// antes de chamar o gerador.
type Venda struct {
	// NumeroNota é o número do documento fiscal (nNF). Precisa já estar
	// atribuído: zero interrompe a geração.
	NumeroNota int
	Natureza   string
	CFOP       string
	Emissao    time.Time

	Emitente     Pessoa
	Destinatario Pessoa
	Itens        []ItemVenda
	Pagamentos   []Pagamento

	// Desconto é abatido do subtotal dos itens para compor o total da venda.
	Desconto decimal.Decimal

	// Transportadora, quando presente, gera o grupo transporta (X03).
	Transportadora *Pessoa

	Observacoes string
}

// SubtotalItens soma quantidade × preço de todos os itens.
func (v *Venda) SubtotalItens() decimal.Decimal {
	total := decimal.Zero
	for _, item := range v.Itens {
		total = total.Add(item.Total())
	}
	return total
}

// TotalVenda é o subtotal dos itens menos o desconto.
func (v *Venda) TotalVenda() decimal.Decimal {
	return v.SubtotalItens().Sub(v.Desconto)
}

// Orientacao é o formato de impressão do DANFE (tpImp).
type Orientacao int

const (
	OrientacaoRetrato Orientacao = iota + 1
	OrientacaoPaisagem
)

// Ambiente de emissão (tpAmb).
type Ambiente int

const (
	AmbienteProducao Ambiente = iota + 1
	AmbienteHomologacao
)

// Config carrega os parâmetros de emissão que na aplicação vêm da
// configuração da filial. CNF é a fonte do componente aleatório de nove
// dígitos da chave; injetável para manter a geração determinística em teste.
type Config struct {
	Serie          int
	Orientacao     Orientacao
	Ambiente       Ambiente
	VersaoProcesso string

	CNF func() int
}
