package cupom

import (
	"testing"

	"github.com/shopspring/decimal"
)

func itemTeste(codigo string, quantidade, preco string) Item {
	return Item{
		Codigo:        codigo,
		Descricao:     "Item de teste " + codigo,
		Quantidade:    decimal.RequireFromString(quantidade),
		PrecoUnitario: decimal.RequireFromString(preco),
		Unidade:       UnidadeVazia,
		Imposto:       ImpostoIsento,
	}
}

func TestCicloCompleto(t *testing.T) {
	imp := NovaImpressora(NovoSimulado())

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}

	id1, err := imp.AdicionarItem(itemTeste("001", "2", "10.50"))
	if err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	id2, err := imp.AdicionarItem(itemTeste("002", "1.5", "4.00"))
	if err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Errorf("ids = %d e %d, esperados 1 e 2", id1, id2)
	}

	// 21.00 + 6.00 - 1.00 de desconto
	total, err := imp.Totalizar(decimal.RequireFromString("1.00"), decimal.Zero, ImpostoIsento)
	if err != nil {
		t.Fatalf("Totalizar: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("26.00")) {
		t.Errorf("total = %s, esperado 26.00", total)
	}

	restante, err := imp.AdicionarPagamento(PagamentoDinheiro, decimal.NewFromInt(20), "Dinheiro")
	if err != nil {
		t.Fatalf("AdicionarPagamento: %v", err)
	}
	if !restante.Equal(decimal.NewFromInt(6)) {
		t.Errorf("restante = %s, esperado 6", restante)
	}

	restante, err = imp.AdicionarPagamento(PagamentoCheque, decimal.NewFromInt(6), "Cheque")
	if err != nil {
		t.Fatalf("AdicionarPagamento: %v", err)
	}
	if !restante.IsZero() {
		t.Errorf("restante = %s, esperado zero", restante)
	}

	numero, err := imp.Fechar("Obrigado, volte sempre")
	if err != nil {
		t.Fatalf("Fechar: %v", err)
	}
	if numero != 1 {
		t.Errorf("número = %d, esperado 1", numero)
	}

	// o ciclo recomeça limpo
	if err := imp.Abrir(); err != nil {
		t.Fatalf("reabrir: %v", err)
	}
	if !imp.Restante().IsZero() {
		t.Errorf("restante após reabrir = %s", imp.Restante())
	}
}

func TestRestanteNuncaNegativo(t *testing.T) {
	imp := NovaImpressora(NovoSimulado())

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}
	if _, err := imp.AdicionarItem(itemTeste("001", "1", "10.00")); err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	if _, err := imp.Totalizar(decimal.Zero, decimal.Zero, ImpostoIsento); err != nil {
		t.Fatalf("Totalizar: %v", err)
	}

	restante, err := imp.AdicionarPagamento(PagamentoDinheiro, decimal.NewFromInt(50), "Dinheiro")
	if err != nil {
		t.Fatalf("AdicionarPagamento: %v", err)
	}
	if !restante.IsZero() {
		t.Errorf("restante = %s, esperado zero no troco", restante)
	}
}

// driverContador conta as chamadas que chegam ao driver para garantir que as
// pré-condições barram a operação antes de qualquer tráfego.
type driverContador struct {
	*Simulado
	chamadas int
}

func (d *driverContador) AdicionarItem(item Item) (int, error) {
	d.chamadas++
	return d.Simulado.AdicionarItem(item)
}

func (d *driverContador) AdicionarPagamento(m MetodoPagamento, v decimal.Decimal, desc string) error {
	d.chamadas++
	return d.Simulado.AdicionarPagamento(m, v, desc)
}

func (d *driverContador) FecharCupom(mensagem string) (int, error) {
	d.chamadas++
	return d.Simulado.FecharCupom(mensagem)
}

func TestPagamentoAntesDeTotalizar(t *testing.T) {
	driver := &driverContador{Simulado: NovoSimulado()}
	imp := NovaImpressora(driver)

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}

	_, err := imp.AdicionarPagamento(PagamentoDinheiro, decimal.NewFromInt(10), "")
	if !TemCondicao(err, CondicaoErroAdicaoPagamento) {
		t.Errorf("erro = %v, esperada CondicaoErroAdicaoPagamento", err)
	}
	if driver.chamadas != 0 {
		t.Errorf("driver recebeu %d chamadas, esperava nenhuma", driver.chamadas)
	}
}

func TestItemAposTotalizar(t *testing.T) {
	driver := &driverContador{Simulado: NovoSimulado()}
	imp := NovaImpressora(driver)

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}
	if _, err := imp.AdicionarItem(itemTeste("001", "1", "5.00")); err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	if _, err := imp.Totalizar(decimal.Zero, decimal.Zero, ImpostoIsento); err != nil {
		t.Fatalf("Totalizar: %v", err)
	}
	driver.chamadas = 0

	_, err := imp.AdicionarItem(itemTeste("002", "1", "3.00"))
	if !TemCondicao(err, CondicaoErroAdicaoItem) {
		t.Errorf("erro = %v, esperada CondicaoErroAdicaoItem", err)
	}
	if driver.chamadas != 0 {
		t.Errorf("driver recebeu %d chamadas, esperava nenhuma", driver.chamadas)
	}
}

func TestFecharSemPagamentoSuficiente(t *testing.T) {
	driver := &driverContador{Simulado: NovoSimulado()}
	imp := NovaImpressora(driver)

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}
	if _, err := imp.AdicionarItem(itemTeste("001", "1", "10.00")); err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}

	t.Run("sem totalizar", func(t *testing.T) {
		driver.chamadas = 0
		if _, err := imp.Fechar(""); !TemCondicao(err, CondicaoErroFechamento) {
			t.Errorf("erro = %v, esperada CondicaoErroFechamento", err)
		}
		if driver.chamadas != 0 {
			t.Error("fechamento chegou ao driver sem totalizar")
		}
	})

	if _, err := imp.Totalizar(decimal.Zero, decimal.Zero, ImpostoIsento); err != nil {
		t.Fatalf("Totalizar: %v", err)
	}

	t.Run("sem pagamentos", func(t *testing.T) {
		driver.chamadas = 0
		if _, err := imp.Fechar(""); !TemCondicao(err, CondicaoErroFechamento) {
			t.Errorf("erro = %v, esperada CondicaoErroFechamento", err)
		}
		if driver.chamadas != 0 {
			t.Error("fechamento chegou ao driver sem pagamentos")
		}
	})

	if _, err := imp.AdicionarPagamento(PagamentoDinheiro, decimal.NewFromInt(5), ""); err != nil {
		t.Fatalf("AdicionarPagamento: %v", err)
	}

	t.Run("pagamento insuficiente", func(t *testing.T) {
		driver.chamadas = 0
		if _, err := imp.Fechar(""); !TemCondicao(err, CondicaoErroFechamento) {
			t.Errorf("erro = %v, esperada CondicaoErroFechamento", err)
		}
		if driver.chamadas != 0 {
			t.Error("fechamento chegou ao driver com pagamento insuficiente")
		}
	})
}

func TestDescontoEAcrescimoExclusivos(t *testing.T) {
	imp := NovaImpressora(NovoSimulado())
	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}

	item := itemTeste("001", "1", "10.00")
	item.Desconto = decimal.NewFromInt(1)
	item.Acrescimo = decimal.NewFromInt(1)
	if _, err := imp.AdicionarItem(item); !TemCondicao(err, CondicaoErroAdicaoItem) {
		t.Errorf("item: erro = %v, esperada CondicaoErroAdicaoItem", err)
	}

	if _, err := imp.AdicionarItem(itemTeste("001", "1", "10.00")); err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	um := decimal.NewFromInt(1)
	if _, err := imp.Totalizar(um, um, ImpostoIsento); !TemCondicao(err, CondicaoErroTotalizacao) {
		t.Errorf("totalização: erro = %v, esperada CondicaoErroTotalizacao", err)
	}
}

func TestUnidadePersonalizada(t *testing.T) {
	imp := NovaImpressora(NovoSimulado())
	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}

	item := itemTeste("001", "1", "10.00")
	item.Unidade = UnidadePersonalizada
	item.UnidadeDescricao = "dz"
	if _, err := imp.AdicionarItem(item); err != nil {
		t.Errorf("descrição de dois caracteres rejeitada: %v", err)
	}

	item.UnidadeDescricao = "duzia"
	if _, err := imp.AdicionarItem(item); !TemCondicao(err, CondicaoErroAdicaoItem) {
		t.Errorf("erro = %v, esperada CondicaoErroAdicaoItem", err)
	}

	item.Unidade = UnidadePeso
	item.UnidadeDescricao = "Kg"
	if _, err := imp.AdicionarItem(item); !TemCondicao(err, CondicaoErroAdicaoItem) {
		t.Errorf("erro = %v, esperada CondicaoErroAdicaoItem", err)
	}
}

func TestErrosDoEquipamento(t *testing.T) {
	imp := NovaImpressora(NovoSimulado())

	if err := imp.Abrir(); err != nil {
		t.Fatalf("Abrir: %v", err)
	}
	if err := imp.Abrir(); !TemCondicao(err, CondicaoCupomAberto) {
		t.Errorf("reabrir: erro = %v, esperada CondicaoCupomAberto", err)
	}

	if _, err := imp.Totalizar(decimal.Zero, decimal.Zero, ImpostoIsento); err == nil {
		t.Error("totalização sem itens aceita")
	}

	if err := imp.CancelarItem(9); !TemCondicao(err, CondicaoErroCancelamentoItem) {
		t.Errorf("cancelamento: erro = %v, esperada CondicaoErroCancelamentoItem", err)
	}
}
