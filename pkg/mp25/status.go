package mp25

import (
	"fmt"

	"fiscalbr/pkg/cupom"
)

// bitPoucoPapel em ST1 sinaliza pouco papel. É o único bit de status que não
// interrompe a operação: vira aviso e o comando segue. Pág. 16.
const bitPoucoPapel = 64

type statusFalha struct {
	bit      byte
	condicao cupom.Condicao
	mensagem string
}

// Tabela do primeiro byte de status. Pág. 16.
var tabelaST1 = []statusFalha{
	{128, cupom.CondicaoSemPapel, "impressora sem papel"},
	{32, cupom.CondicaoErroImpressora, "erro no relógio da impressora"},
	{16, cupom.CondicaoErroImpressora, "impressora em estado de erro"},
	{8, cupom.CondicaoErroComando, "primeiro byte do comando não é ESC"},
	{4, cupom.CondicaoErroComando, "comando inexistente"},
	{2, cupom.CondicaoCupomAberto, "impressora com cupom aberto"},
	{1, cupom.CondicaoErroComando, "número de parâmetros inválido"},
}

// Tabela do segundo byte de status. Pág. 16.
var tabelaST2 = []statusFalha{
	{128, cupom.CondicaoErroComando, "parâmetro de comando inválido"},
	{64, cupom.CondicaoFalhaHardware, "memória fiscal lotada"},
	{32, cupom.CondicaoFalhaHardware, "erro na memória CMOS"},
	{16, cupom.CondicaoErroImpressora, "alíquota não programada na impressora"},
	{8, cupom.CondicaoErroDriver, "sem espaço para nova alíquota"},
	{4, cupom.CondicaoErroDriver, "cancelamento não permitido"},
	{2, cupom.CondicaoErroImpressora, "CNPJ/IE do proprietário não programados"},
	{1, cupom.CondicaoErroComando, "comando não executado"},
}

// Tabela do terceiro byte de status (protocolo estendido). Quando ST2 indica
// "comando não executado", ST3 traz a causa específica. Pág. 17.
var tabelaST3 = map[uint16]statusFalha{
	7:   {condicao: cupom.CondicaoCupomAberto, mensagem: "cupom já aberto"},
	8:   {condicao: cupom.CondicaoErroDriver, mensagem: "cupom fechado"},
	13:  {condicao: cupom.CondicaoImpressoraOffline, mensagem: "impressora offline"},
	16:  {condicao: cupom.CondicaoErroDriver, mensagem: "acréscimo ou desconto maior que o total do cupom"},
	17:  {condicao: cupom.CondicaoErroDriver, mensagem: "cupom sem itens"},
	20:  {condicao: cupom.CondicaoErroAdicaoPagamento, mensagem: "forma de pagamento não reconhecida"},
	22:  {condicao: cupom.CondicaoErroAdicaoPagamento, mensagem: "total do cupom já atingido, pagamento não permitido"},
	23:  {condicao: cupom.CondicaoErroDriver, mensagem: "cupom ainda não totalizado"},
	43:  {condicao: cupom.CondicaoErroImpressora, mensagem: "impressora não inicializada"},
	45:  {condicao: cupom.CondicaoErroImpressora, mensagem: "impressora sem número de série"},
	52:  {condicao: cupom.CondicaoErroDriver, mensagem: "data inicial inválida"},
	53:  {condicao: cupom.CondicaoErroDriver, mensagem: "data final inválida"},
	85:  {condicao: cupom.CondicaoErroDriver, mensagem: "venda com valor nulo"},
	91:  {condicao: cupom.CondicaoErroAdicaoItem, mensagem: "acréscimo ou desconto maior que o valor do item"},
	100: {condicao: cupom.CondicaoErroDriver, mensagem: "data inválida"},
	115: {condicao: cupom.CondicaoErroCancelamentoItem, mensagem: "item inexistente ou já cancelado"},
	118: {condicao: cupom.CondicaoErroDriver, mensagem: "acréscimo maior que o valor do item"},
	119: {condicao: cupom.CondicaoErroDriver, mensagem: "desconto maior que o valor do item"},
	129: {condicao: cupom.CondicaoErroDriver, mensagem: "mês inválido"},
	169: {condicao: cupom.CondicaoErroTotalizacao, mensagem: "cupom já totalizado"},
	170: {condicao: cupom.CondicaoErroAdicaoPagamento, mensagem: "cupom ainda não totalizado"},
	171: {condicao: cupom.CondicaoErroDriver, mensagem: "acréscimo no subtotal já aplicado"},
	172: {condicao: cupom.CondicaoErroDriver, mensagem: "desconto no subtotal já aplicado"},
	176: {condicao: cupom.CondicaoErroDriver, mensagem: "data inválida"},
}

// decodificarStatus interpreta os bytes de status de uma resposta já sem o
// payload: ACK, ST1, ST2, STL e STH. Função pura: devolve o aviso de pouco
// papel e o erro classificado, sem tocar no transporte.
func decodificarStatus(resposta []byte) (avisoPoucoPapel bool, err error) {
	if len(resposta) < 5 {
		return false, cupom.NovoErro(cupom.CondicaoErroDriver,
			fmt.Sprintf("resposta truncada da impressora (%d bytes)", len(resposta)))
	}
	if resposta[0] != ack {
		if resposta[0] == nak {
			return false, cupom.NovoErro(cupom.CondicaoErroDriver,
				"impressora recusou o pacote (NAK)")
		}
		return false, cupom.NovoErro(cupom.CondicaoErroDriver,
			fmt.Sprintf("byte de confirmação inesperado %#02x", resposta[0]))
	}

	st1, st2 := resposta[1], resposta[2]
	avisoPoucoPapel = st1&bitPoucoPapel != 0

	if resto := st1 &^ byte(bitPoucoPapel); resto != 0 {
		for _, f := range tabelaST1 {
			if resto&f.bit != 0 {
				return avisoPoucoPapel, cupom.NovoErro(f.condicao, f.mensagem)
			}
		}
	}
	if st2 == 0 {
		return avisoPoucoPapel, nil
	}

	// ST2 == 1 é o genérico "comando não executado"; no protocolo estendido
	// a causa específica vem em ST3 (STL + STH).
	if st2 == 1 {
		st3 := uint16(resposta[3]) | uint16(resposta[4])<<8
		if f, ok := tabelaST3[st3]; ok {
			return avisoPoucoPapel, cupom.NovoErro(f.condicao, f.mensagem)
		}
	}
	for _, f := range tabelaST2 {
		if st2&f.bit != 0 {
			return avisoPoucoPapel, cupom.NovoErro(f.condicao, f.mensagem)
		}
	}
	return avisoPoucoPapel, nil
}
