package cupom

import "github.com/shopspring/decimal"

// Impressora envolve um Driver e impõe as pré-condições do ciclo do cupom
// antes de qualquer tráfego com o equipamento: item depois de totalizar,
// pagamento antes de totalizar e fechamento sem pagamento suficiente falham
// aqui, sem ocupar a serial. O estado que só o equipamento conhece (cupom já
// aberto, item inexistente) continua sendo reportado por ele.
type Impressora struct {
	driver Driver

	totalizado      bool
	valorTotalizado decimal.Decimal
	totalPagamentos decimal.Decimal
	restante        decimal.Decimal
}

// NovaImpressora cria o ciclo de cupom sobre o driver informado.
func NovaImpressora(driver Driver) *Impressora {
	return &Impressora{driver: driver}
}

func (i *Impressora) limpar() {
	i.totalizado = false
	i.valorTotalizado = decimal.Zero
	i.totalPagamentos = decimal.Zero
	i.restante = decimal.Zero
}

// IdentificarCliente repassa os dados do consumidor ao driver para o próximo
// cupom.
func (i *Impressora) IdentificarCliente(nome, endereco, documento string) {
	i.driver.IdentificarCliente(nome, endereco, documento)
}

// Abrir abre um novo cupom. Se o equipamento já tiver um cupom aberto, o
// erro vem dele com CondicaoCupomAberto.
func (i *Impressora) Abrir() error {
	i.limpar()
	return i.driver.AbrirCupom()
}

// AdicionarItem valida e envia um item, devolvendo o identificador atribuído
// pelo equipamento.
func (i *Impressora) AdicionarItem(item Item) (int, error) {
	if i.totalizado {
		return 0, NovoErro(CondicaoErroAdicaoItem,
			"cupom já totalizado não aceita novos itens")
	}
	if item.Desconto.IsPositive() && item.Acrescimo.IsPositive() {
		return 0, NovoErro(CondicaoErroAdicaoItem,
			"desconto e acréscimo são mutuamente exclusivos")
	}
	if item.Unidade == UnidadePersonalizada && len([]rune(item.UnidadeDescricao)) != 2 {
		return 0, NovoErro(CondicaoErroAdicaoItem,
			"unidade personalizada exige descrição de dois caracteres")
	}
	if item.Unidade != UnidadePersonalizada && item.UnidadeDescricao != "" {
		return 0, NovoErro(CondicaoErroAdicaoItem,
			"descrição de unidade só vale para unidade personalizada")
	}
	return i.driver.AdicionarItem(item)
}

// CancelarItem cancela o item informado; zero cancela o último.
func (i *Impressora) CancelarItem(id int) error {
	return i.driver.CancelarItem(id)
}

// Totalizar fecha a fase de itens aplicando desconto ou acréscimo sobre o
// subtotal. O valor devolvido é o lido do equipamento e passa a ser o saldo
// a pagar.
func (i *Impressora) Totalizar(desconto, acrescimo decimal.Decimal, imposto CodigoImposto) (decimal.Decimal, error) {
	if i.totalizado {
		return decimal.Zero, NovoErro(CondicaoErroTotalizacao,
			"cupom já totalizado")
	}
	if desconto.IsPositive() && acrescimo.IsPositive() {
		return decimal.Zero, NovoErro(CondicaoErroTotalizacao,
			"desconto e acréscimo são mutuamente exclusivos")
	}
	valor, err := i.driver.Totalizar(desconto, acrescimo, imposto)
	if err != nil {
		return decimal.Zero, err
	}
	i.totalizado = true
	i.valorTotalizado = valor
	i.restante = valor
	return valor, nil
}

// AdicionarPagamento registra um pagamento e devolve o saldo restante,
// nunca negativo. O equipamento não expõe o saldo, então ele é acompanhado
// aqui.
func (i *Impressora) AdicionarPagamento(metodo MetodoPagamento, valor decimal.Decimal, descricao string) (decimal.Decimal, error) {
	if !i.totalizado {
		return decimal.Zero, NovoErro(CondicaoErroAdicaoPagamento,
			"totalize o cupom antes de registrar pagamentos")
	}
	if err := i.driver.AdicionarPagamento(metodo, valor, descricao); err != nil {
		return decimal.Zero, err
	}
	i.totalPagamentos = i.totalPagamentos.Add(valor)
	i.restante = i.restante.Sub(valor)
	if i.restante.IsNegative() {
		i.restante = decimal.Zero
	}
	return i.restante, nil
}

// Restante devolve o saldo a pagar do cupom corrente.
func (i *Impressora) Restante() decimal.Decimal { return i.restante }

// Fechar encerra o cupom e devolve o número atribuído pelo equipamento.
func (i *Impressora) Fechar(mensagem string) (int, error) {
	if !i.totalizado {
		return 0, NovoErro(CondicaoErroFechamento,
			"totalize o cupom antes de fechar")
	}
	if i.totalPagamentos.IsZero() {
		return 0, NovoErro(CondicaoErroFechamento,
			"cupom sem pagamentos registrados")
	}
	if i.totalPagamentos.LessThan(i.valorTotalizado) {
		return 0, NovoErro(CondicaoErroFechamento,
			"pagamentos registrados não cobrem o total do cupom")
	}
	numero, err := i.driver.FecharCupom(mensagem)
	if err != nil {
		return 0, err
	}
	i.limpar()
	return numero, nil
}

// Cancelar cancela o cupom em aberto e zera o estado local.
func (i *Impressora) Cancelar() error {
	if err := i.driver.CancelarCupom(); err != nil {
		return err
	}
	i.limpar()
	return nil
}

// LeituraX imprime o relatório de leitura X.
func (i *Impressora) LeituraX() error { return i.driver.LeituraX() }

// ReducaoZ imprime a redução Z do dia.
func (i *Impressora) ReducaoZ() error { return i.driver.ReducaoZ() }

// Suprimento registra entrada de dinheiro no caixa.
func (i *Impressora) Suprimento(valor decimal.Decimal) error {
	return i.driver.Suprimento(valor)
}

// Sangria registra retirada de dinheiro do caixa.
func (i *Impressora) Sangria(valor decimal.Decimal) error {
	return i.driver.Sangria(valor)
}
