package cupom

import "github.com/shopspring/decimal"

// Simulado é um driver em memória que reproduz as respostas de uma
// impressora fiscal real, inclusive os erros reportados pelo equipamento.
// Serve aos testes do ciclo do cupom e ao modo de simulação da linha de
// comando.
type Simulado struct {
	// Logf, quando definido, recebe cada operação executada.
	Logf func(formato string, args ...any)

	aberto     bool
	totalizado bool
	proximoID  int
	itens      map[int]Item
	subtotal   decimal.Decimal
	pago       decimal.Decimal
	numero     int

	clienteNome      string
	clienteEndereco  string
	clienteDocumento string
}

var _ Driver = (*Simulado)(nil)

// NovoSimulado cria o driver simulado com o contador de cupons zerado.
func NovoSimulado() *Simulado {
	return &Simulado{itens: map[int]Item{}}
}

func (s *Simulado) logf(formato string, args ...any) {
	if s.Logf != nil {
		s.Logf(formato, args...)
	}
}

func (s *Simulado) IdentificarCliente(nome, endereco, documento string) {
	s.clienteNome = nome
	s.clienteEndereco = endereco
	s.clienteDocumento = documento
}

func (s *Simulado) AbrirCupom() error {
	if s.aberto {
		return NovoErro(CondicaoCupomAberto, "cupom já aberto")
	}
	s.aberto = true
	s.totalizado = false
	s.proximoID = 0
	s.itens = map[int]Item{}
	s.subtotal = decimal.Zero
	s.pago = decimal.Zero
	s.logf("cupom aberto (cliente %q)", s.clienteNome)
	return nil
}

func (s *Simulado) AdicionarItem(item Item) (int, error) {
	if !s.aberto {
		return 0, NovoErro(CondicaoErroDriver, "cupom fechado")
	}
	s.proximoID++
	s.itens[s.proximoID] = item

	total := item.Quantidade.Mul(item.PrecoUnitario).
		Sub(item.Desconto).Add(item.Acrescimo)
	s.subtotal = s.subtotal.Add(total)
	s.logf("item %d: %s x%s", s.proximoID, item.Codigo, item.Quantidade)
	return s.proximoID, nil
}

func (s *Simulado) CancelarItem(id int) error {
	if id == 0 {
		id = s.proximoID
	}
	item, ok := s.itens[id]
	if !ok {
		return NovoErro(CondicaoErroCancelamentoItem,
			"item inexistente ou já cancelado")
	}
	delete(s.itens, id)

	total := item.Quantidade.Mul(item.PrecoUnitario).
		Sub(item.Desconto).Add(item.Acrescimo)
	s.subtotal = s.subtotal.Sub(total)
	s.logf("item %d cancelado", id)
	return nil
}

func (s *Simulado) Totalizar(desconto, acrescimo decimal.Decimal, _ CodigoImposto) (decimal.Decimal, error) {
	if !s.aberto {
		return decimal.Zero, NovoErro(CondicaoErroDriver, "cupom fechado")
	}
	if s.totalizado {
		return decimal.Zero, NovoErro(CondicaoErroTotalizacao, "cupom já totalizado")
	}
	if len(s.itens) == 0 {
		return decimal.Zero, NovoErro(CondicaoErroDriver, "cupom sem itens")
	}
	s.subtotal = s.subtotal.Sub(desconto).Add(acrescimo)
	s.totalizado = true
	s.logf("cupom totalizado em %s", s.subtotal)
	return s.subtotal, nil
}

func (s *Simulado) AdicionarPagamento(_ MetodoPagamento, valor decimal.Decimal, descricao string) error {
	if !s.totalizado {
		return NovoErro(CondicaoErroAdicaoPagamento, "cupom ainda não totalizado")
	}
	if s.pago.GreaterThanOrEqual(s.subtotal) {
		return NovoErro(CondicaoErroAdicaoPagamento,
			"total do cupom já atingido, pagamento não permitido")
	}
	s.pago = s.pago.Add(valor)
	s.logf("pagamento de %s (%s)", valor, descricao)
	return nil
}

func (s *Simulado) FecharCupom(_ string) (int, error) {
	if !s.totalizado {
		return 0, NovoErro(CondicaoErroDriver, "cupom ainda não totalizado")
	}
	if s.pago.LessThan(s.subtotal) {
		return 0, NovoErro(CondicaoErroDriver,
			"pagamentos não cobrem o total do cupom")
	}
	s.numero++
	s.aberto = false
	s.totalizado = false
	s.logf("cupom %d fechado", s.numero)
	return s.numero, nil
}

func (s *Simulado) CancelarCupom() error {
	if !s.aberto {
		return NovoErro(CondicaoErroDriver, "não há cupom aberto")
	}
	s.aberto = false
	s.totalizado = false
	s.logf("cupom cancelado")
	return nil
}

func (s *Simulado) LeituraX() error {
	s.logf("leitura X emitida")
	return nil
}

func (s *Simulado) ReducaoZ() error {
	s.logf("redução Z emitida")
	return nil
}

func (s *Simulado) Suprimento(valor decimal.Decimal) error {
	s.logf("suprimento de %s", valor)
	return nil
}

func (s *Simulado) Sangria(valor decimal.Decimal) error {
	s.logf("sangria de %s", valor)
	return nil
}
