package mp25

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"fiscalbr/pkg/cupom"
)

// portaRoteirizada devolve uma resposta pré-programada para cada escrita,
// na ordem em que foram enfileiradas.
type portaRoteirizada struct {
	escritas  [][]byte
	respostas [][]byte
	saida     []byte
}

func (p *portaRoteirizada) Write(b []byte) (int, error) {
	copia := make([]byte, len(b))
	copy(copia, b)
	p.escritas = append(p.escritas, copia)

	if len(p.respostas) > 0 {
		p.saida = append(p.saida, p.respostas[0]...)
		p.respostas = p.respostas[1:]
	}
	return len(b), nil
}

func (p *portaRoteirizada) Read(b []byte) (int, error) {
	if len(p.saida) == 0 {
		// porta muda: o transporte trata 0 bytes como timeout
		return 0, nil
	}
	n := copy(b, p.saida)
	p.saida = p.saida[n:]
	return n, nil
}

func (p *portaRoteirizada) Close() error { return nil }

func novoDriverTeste(respostas ...[]byte) (*MP25, *portaRoteirizada) {
	porta := &portaRoteirizada{respostas: respostas}
	return NovoComTransporte(NovoTransporteComPorta(porta)), porta
}

// statusOK é a cauda de resposta de um comando aceito: ACK e quatro bytes de
// status zerados.
var statusOK = []byte{ack, 0, 0, 0, 0}

func TestAbrirCupom(t *testing.T) {
	d, porta := novoDriverTeste(statusOK)

	if err := d.AbrirCupom(); err != nil {
		t.Fatalf("AbrirCupom: %v", err)
	}
	esperado := montarPacote([]byte{cmdAbrirCupom})
	if !bytes.Equal(porta.escritas[0], esperado) {
		t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
	}
}

func TestAbrirCupomComCliente(t *testing.T) {
	d, porta := novoDriverTeste(statusOK)

	d.IdentificarCliente("José da Silva", "Avenida Amazonas, 500", "12345678909")
	if err := d.AbrirCupom(); err != nil {
		t.Fatalf("AbrirCupom: %v", err)
	}

	// comando + documento(29) + nome(30) + endereço(80)
	dados := porta.escritas[0][3 : len(porta.escritas[0])-2]
	if len(dados) != 1+1+29+30+80 {
		t.Fatalf("comando com %d bytes, esperados %d", len(dados), 141)
	}
	bloco := dados[2:]
	if !bytes.HasPrefix(bloco, []byte("12345678909")) {
		t.Errorf("bloco do consumidor não começa pelo documento: %q", bloco[:29])
	}
	if !bytes.Equal(bloco[29:59], []byte(fmt.Sprintf("%-30s", "Jos\x82 da Silva"))) {
		t.Errorf("nome fora da posição ou sem CP850: %q", bloco[29:59])
	}
}

func TestAbrirCupomJaAberto(t *testing.T) {
	d, _ := novoDriverTeste([]byte{ack, 2, 0, 0, 0})

	err := d.AbrirCupom()
	if !cupom.TemCondicao(err, cupom.CondicaoCupomAberto) {
		t.Errorf("erro = %v, esperada CondicaoCupomAberto", err)
	}
}

func TestAdicionarItem(t *testing.T) {
	d, porta := novoDriverTeste(
		statusOK,
		// último item = 15 em BCD, entre o ACK e o status
		[]byte{ack, 0x00, 0x15, 0, 0, 0, 0},
	)

	id, err := d.AdicionarItem(cupom.Item{
		Codigo:        "001",
		Descricao:     "Café torrado 500g",
		Quantidade:    decimal.NewFromInt(2),
		PrecoUnitario: decimal.RequireFromString("10.50"),
		Unidade:       cupom.UnidadeVazia,
		Imposto:       cupom.ImpostoIsento,
	})
	if err != nil {
		t.Fatalf("AdicionarItem: %v", err)
	}
	if id != 15 {
		t.Errorf("id = %d, esperado 15", id)
	}

	dados := porta.escritas[0][3 : len(porta.escritas[0])-2]
	corpo := string(dados[1:])
	if corpo[0] != cmdAdicionarItem {
		t.Errorf("comando = %d, esperado %d", corpo[0], cmdAdicionarItem)
	}
	// preço em milésimos e quantidade em milésimos, larguras fixas
	if corpo[1:3] != "II" || corpo[3:12] != "000010500" || corpo[12:19] != "0002000" {
		t.Errorf("campos numéricos do item: %q", corpo[1:19])
	}

	// a consulta do identificador usa o registrador de último item
	esperado := montarPacote([]byte{cmdLerVariavel, varUltimoItem})
	if !bytes.Equal(porta.escritas[1], esperado) {
		t.Errorf("consulta = % x, esperada % x", porta.escritas[1], esperado)
	}
}

func TestCancelarItem(t *testing.T) {
	t.Run("identificador explícito", func(t *testing.T) {
		d, porta := novoDriverTeste(statusOK)
		if err := d.CancelarItem(7); err != nil {
			t.Fatalf("CancelarItem: %v", err)
		}
		esperado := montarPacote([]byte(fmt.Sprintf("%c%04d", cmdCancelarItem, 7)))
		if !bytes.Equal(porta.escritas[0], esperado) {
			t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
		}
	})
	t.Run("zero cancela o último", func(t *testing.T) {
		d, porta := novoDriverTeste(
			[]byte{ack, 0x00, 0x03, 0, 0, 0, 0},
			statusOK,
		)
		if err := d.CancelarItem(0); err != nil {
			t.Fatalf("CancelarItem: %v", err)
		}
		esperado := montarPacote([]byte(fmt.Sprintf("%c%04d", cmdCancelarItem, 3)))
		if !bytes.Equal(porta.escritas[1], esperado) {
			t.Errorf("pacote = % x, esperado % x", porta.escritas[1], esperado)
		}
	})
}

func TestTotalizar(t *testing.T) {
	d, porta := novoDriverTeste(
		statusOK,
		// subtotal 26.00 em sete bytes BCD
		[]byte{ack, 0x00, 0x00, 0x00, 0x00, 0x00, 0x26, 0x00, 0, 0, 0, 0},
	)

	total, err := d.Totalizar(decimal.RequireFromString("1.00"), decimal.Zero, cupom.ImpostoIsento)
	if err != nil {
		t.Fatalf("Totalizar: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("26.00")) {
		t.Errorf("total = %s, esperado 26.00", total)
	}

	esperado := montarPacote([]byte(fmt.Sprintf("%cD%04d", cmdTotalizar, 100)))
	if !bytes.Equal(porta.escritas[0], esperado) {
		t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
	}
}

func TestTotalizarSemDesconto(t *testing.T) {
	d, porta := novoDriverTeste(
		statusOK,
		[]byte{ack, 0x00, 0x00, 0x00, 0x00, 0x00, 0x26, 0x00, 0, 0, 0, 0},
	)

	if _, err := d.Totalizar(decimal.Zero, decimal.Zero, cupom.ImpostoIsento); err != nil {
		t.Fatalf("Totalizar: %v", err)
	}
	esperado := montarPacote([]byte(fmt.Sprintf("%cA%04d", cmdTotalizar, 0)))
	if !bytes.Equal(porta.escritas[0], esperado) {
		t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
	}
}

func TestAdicionarPagamento(t *testing.T) {
	d, porta := novoDriverTeste(statusOK)

	err := d.AdicionarPagamento(cupom.PagamentoDinheiro, decimal.RequireFromString("26.00"), "Dinheiro")
	if err != nil {
		t.Fatalf("AdicionarPagamento: %v", err)
	}
	esperado := montarPacote([]byte(fmt.Sprintf("%c01%014dDinheiro", cmdAdicionarPagamento, 2600)))
	if !bytes.Equal(porta.escritas[0], esperado) {
		t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
	}
}

func TestFecharCupom(t *testing.T) {
	d, porta := novoDriverTeste(
		statusOK,
		// número do cupom 123 em três bytes BCD
		[]byte{ack, 0x00, 0x01, 0x23, 0, 0, 0, 0},
	)

	numero, err := d.FecharCupom("")
	if err != nil {
		t.Fatalf("FecharCupom: %v", err)
	}
	if numero != 123 {
		t.Errorf("número = %d, esperado 123", numero)
	}
	if !bytes.Equal(porta.escritas[0], montarPacote([]byte{cmdFecharCupom})) {
		t.Errorf("pacote de fechamento: % x", porta.escritas[0])
	}
	if !bytes.Equal(porta.escritas[1], montarPacote([]byte{cmdNumeroCupom})) {
		t.Errorf("consulta do número: % x", porta.escritas[1])
	}
}

func TestVales(t *testing.T) {
	tests := []struct {
		name string
		op   func(*MP25) error
		tipo string
	}{
		{"suprimento", func(d *MP25) error { return d.Suprimento(decimal.NewFromInt(50)) }, "SU"},
		{"sangria", func(d *MP25) error { return d.Sangria(decimal.NewFromInt(50)) }, "SA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, porta := novoDriverTeste(statusOK)
			if err := tt.op(d); err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			esperado := montarPacote([]byte(fmt.Sprintf("%c%s%014d", cmdVale, tt.tipo, 5000)))
			if !bytes.Equal(porta.escritas[0], esperado) {
				t.Errorf("pacote = % x, esperado % x", porta.escritas[0], esperado)
			}
		})
	}
}

func TestRelatorios(t *testing.T) {
	d, porta := novoDriverTeste(statusOK, statusOK)

	if err := d.LeituraX(); err != nil {
		t.Fatalf("LeituraX: %v", err)
	}
	if err := d.ReducaoZ(); err != nil {
		t.Fatalf("ReducaoZ: %v", err)
	}
	if !bytes.Equal(porta.escritas[0], montarPacote([]byte{cmdLeituraX})) {
		t.Errorf("leitura X: % x", porta.escritas[0])
	}
	if !bytes.Equal(porta.escritas[1], montarPacote([]byte{cmdReducaoZ})) {
		t.Errorf("redução Z: % x", porta.escritas[1])
	}
}

func TestTimeoutDeResposta(t *testing.T) {
	// nenhuma resposta enfileirada: a leitura devolve 0 bytes
	d, _ := novoDriverTeste()

	err := d.LeituraX()
	if !cupom.TemCondicao(err, cupom.CondicaoErroDriver) {
		t.Errorf("erro = %v, esperada CondicaoErroDriver", err)
	}
}
