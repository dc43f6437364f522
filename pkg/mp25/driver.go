package mp25

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"fiscalbr/pkg/cupom"
)

// unidades na posição de dois caracteres do comando de item. Pág. 38.
var unidades = map[cupom.Unidade]string{
	cupom.UnidadePeso:   "Kg",
	cupom.UnidadeMetros: "m ",
	cupom.UnidadeLitros: "Lt",
	cupom.UnidadeVazia:  "  ",
}

// O equipamento espera o índice da alíquota programada na memória fiscal;
// a posição II é a programada nos equipamentos em homologação.
var aliquotas = map[cupom.CodigoImposto]string{
	cupom.ImpostoNenhum:       "II",
	cupom.ImpostoIsento:       "II",
	cupom.ImpostoICMS:         "II",
	cupom.ImpostoSubstituicao: "II",
	cupom.ImpostoIOF:          "II",
}

// MP25 é o driver das impressoras fiscais Bematech MP-20 FI II e MP-25 FI.
// Implementa cupom.Driver sobre o protocolo estendido (0x1C): cada método
// envia um comando e bloqueia até a resposta completa ou o timeout do
// transporte.
type MP25 struct {
	transporte  *Transporte
	logf        func(formato string, args ...any)
	codificador *encoding.Encoder

	clienteNome      string
	clienteEndereco  string
	clienteDocumento string
}

var _ cupom.Driver = (*MP25)(nil)

// Novo cria o driver para a porta configurada.
func Novo(cfg Config) *MP25 {
	return &MP25{
		transporte:  NovoTransporte(cfg),
		logf:        cfg.Logger,
		codificador: encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder()),
	}
}

// NovoComTransporte monta o driver sobre um transporte pronto. Usado nos
// testes com porta roteirizada.
func NovoComTransporte(t *Transporte) *MP25 {
	return &MP25{
		transporte:  t,
		codificador: encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder()),
	}
}

// Conectar abre a porta serial.
func (d *MP25) Conectar() error { return d.transporte.Conectar() }

// Desconectar fecha a porta serial.
func (d *MP25) Desconectar() error { return d.transporte.Desconectar() }

// executar enquadra o comando, envia, lê a resposta com payload bytes de
// carga útil e decodifica o status. Devolve a carga útil.
func (d *MP25) executar(comando []byte, payload int) ([]byte, error) {
	resposta, err := d.transporte.Trocar(montarPacote(comando), 5+payload)
	if err != nil {
		return nil, cupom.NovoErro(cupom.CondicaoErroDriver, err.Error())
	}

	// status = ACK + ST1 ST2 STL STH; a carga útil fica entre o ACK e o
	// primeiro byte de status
	status := make([]byte, 0, 5)
	status = append(status, resposta[0])
	status = append(status, resposta[1+payload:]...)

	aviso, err := decodificarStatus(status)
	if aviso && d.logf != nil {
		d.logf("mp25: impressora com pouco papel")
	}
	if err != nil {
		return nil, err
	}
	return resposta[1 : 1+payload], nil
}

func (d *MP25) enviar(comando []byte) error {
	_, err := d.executar(comando, 0)
	return err
}

func (d *MP25) codificar(texto string) []byte {
	dados, err := d.codificador.Bytes([]byte(texto))
	if err != nil {
		// com ReplaceUnsupported o encoder não falha; o texto cru mantém
		// ao menos o ASCII legível
		return []byte(texto)
	}
	return dados
}

// IdentificarCliente guarda os dados do consumidor; eles saem impressos no
// cabeçalho do próximo cupom aberto.
func (d *MP25) IdentificarCliente(nome, endereco, documento string) {
	d.clienteNome = nome
	d.clienteEndereco = endereco
	d.clienteDocumento = documento
}

// AbrirCupom abre o cupom fiscal, com o bloco de consumidor quando
// identificado. Pág. 32.
func (d *MP25) AbrirCupom() error {
	dados := fmt.Sprintf("%c", cmdAbrirCupom)
	if d.clienteNome != "" || d.clienteEndereco != "" || d.clienteDocumento != "" {
		dados += fmt.Sprintf("%-29s%-30s%-80s",
			d.clienteDocumento, d.clienteNome, d.clienteEndereco)
	}
	return d.enviar(d.codificar(dados))
}

// AdicionarItem envia o item e devolve o identificador atribuído pelo
// equipamento. Valores em milésimos, desconto e acréscimo em centavos.
// Pág. 38.
func (d *MP25) AdicionarItem(item cupom.Item) (int, error) {
	unidade, ok := unidades[item.Unidade]
	if !ok {
		unidade = fmt.Sprintf("%-2.2s", item.UnidadeDescricao)
	}

	dados := fmt.Sprintf("%c%2s%09d%07d%010d%010d%022d%2s%-48s\x00%-200s\x00",
		cmdAdicionarItem,
		aliquotas[item.Imposto],
		milesimos(item.PrecoUnitario),
		milesimos(item.Quantidade),
		centavos(item.Desconto),
		centavos(item.Acrescimo),
		0,
		unidade,
		item.Codigo,
		item.Descricao)
	if err := d.enviar(d.codificar(dados)); err != nil {
		return 0, err
	}
	return d.UltimoItem()
}

// CancelarItem cancela o item informado; zero cancela o último adicionado.
// Pág. 34.
func (d *MP25) CancelarItem(id int) error {
	if id == 0 {
		ultimo, err := d.UltimoItem()
		if err != nil {
			return err
		}
		id = ultimo
	}
	return d.enviar([]byte(fmt.Sprintf("%c%04d", cmdCancelarItem, id)))
}

// Totalizar inicia o fechamento aplicando desconto ('D') ou acréscimo ('A')
// em centavos e lê de volta o subtotal do equipamento, que é o valor
// autoritativo. Pág. 45.
func (d *MP25) Totalizar(desconto, acrescimo decimal.Decimal, _ cupom.CodigoImposto) (decimal.Decimal, error) {
	tipo := byte('A')
	valor := int64(0)
	switch {
	case desconto.IsPositive():
		tipo = 'D'
		valor = centavos(desconto)
	case acrescimo.IsPositive():
		valor = centavos(acrescimo)
	}
	dados := fmt.Sprintf("%c%c%04d", cmdTotalizar, tipo, valor)
	if err := d.enviar([]byte(dados)); err != nil {
		return decimal.Zero, err
	}
	return d.Subtotal()
}

// AdicionarPagamento registra o pagamento, valor em centavos e descrição
// limitada a 80 caracteres. Pág. 47.
func (d *MP25) AdicionarPagamento(_ cupom.MetodoPagamento, valor decimal.Decimal, descricao string) error {
	// o equipamento de homologação só tem a forma 01 programada; dinheiro e
	// cheque caem na mesma posição
	forma := "01"

	if r := []rune(descricao); len(r) > 80 {
		descricao = string(r[:80])
	}
	dados := fmt.Sprintf("%c%s%014d%s", cmdAdicionarPagamento, forma, centavos(valor), descricao)
	return d.enviar(d.codificar(dados))
}

// FecharCupom encerra o cupom e devolve o número lido do equipamento. A
// mensagem promocional não é suportada por este modelo e é ignorada.
func (d *MP25) FecharCupom(_ string) (int, error) {
	if err := d.enviar([]byte{cmdFecharCupom}); err != nil {
		return 0, err
	}
	return d.NumeroCupom()
}

// CancelarCupom cancela o cupom em aberto. Pág. 35.
func (d *MP25) CancelarCupom() error {
	return d.enviar([]byte{cmdCancelarCupom})
}

// LeituraX imprime o relatório de leitura X. Pág. 27.
func (d *MP25) LeituraX() error {
	return d.enviar([]byte{cmdLeituraX})
}

// ReducaoZ imprime a redução Z e encerra o movimento do dia. Pág. 26.
func (d *MP25) ReducaoZ() error {
	return d.enviar([]byte{cmdReducaoZ})
}

// Suprimento registra entrada de dinheiro no caixa. Pág. 36.
func (d *MP25) Suprimento(valor decimal.Decimal) error {
	return d.vale("SU", valor)
}

// Sangria registra retirada de dinheiro do caixa. Pág. 36.
func (d *MP25) Sangria(valor decimal.Decimal) error {
	return d.vale("SA", valor)
}

func (d *MP25) vale(tipo string, valor decimal.Decimal) error {
	dados := fmt.Sprintf("%c%s%014d", cmdVale, tipo, centavos(valor))
	return d.enviar([]byte(dados))
}

// Subtotal lê o subtotal corrente do cupom: sete bytes BCD em centavos.
// Pág. 49.
func (d *MP25) Subtotal() (decimal.Decimal, error) {
	payload, err := d.executar([]byte{cmdSubtotal}, 7)
	if err != nil {
		return decimal.Zero, err
	}
	valor, err := bcdParaInt(payload)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(valor, -2), nil
}

// UltimoItem lê o identificador do último item adicionado: dois bytes BCD.
// Pág. 87.
func (d *MP25) UltimoItem() (int, error) {
	payload, err := d.executar([]byte{cmdLerVariavel, varUltimoItem}, 2)
	if err != nil {
		return 0, err
	}
	valor, err := bcdParaInt(payload)
	if err != nil {
		return 0, err
	}
	return int(valor), nil
}

// NumeroCupom lê o número do último cupom: três bytes BCD. Pág. 50.
func (d *MP25) NumeroCupom() (int, error) {
	payload, err := d.executar([]byte{cmdNumeroCupom}, 3)
	if err != nil {
		return 0, err
	}
	valor, err := bcdParaInt(payload)
	if err != nil {
		return 0, err
	}
	return int(valor), nil
}
