package cupom

import "errors"

// Condicao classifica as falhas reportadas pela impressora fiscal ou pelas
// pré-condições do ciclo do cupom. A tabela de status do equipamento é
// decodificada para uma dessas condições por uma função pura no driver, longe
// do ponto que dispara o erro.
type Condicao int

const (
	// CondicaoErroDriver cobre respostas ausentes ou truncadas e falhas
	// genéricas de comunicação.
	CondicaoErroDriver Condicao = iota + 1
	CondicaoSemPapel
	CondicaoErroImpressora
	CondicaoErroComando
	CondicaoCupomAberto
	CondicaoFalhaHardware
	CondicaoImpressoraOffline
	CondicaoErroAdicaoItem
	CondicaoErroCancelamentoItem
	CondicaoErroTotalizacao
	CondicaoErroAdicaoPagamento
	CondicaoErroFechamento
)

// Erro é uma falha da impressora ou do ciclo do cupom, com a condição
// classificada e a mensagem da tabela do fabricante (ou da pré-condição
// violada).
type Erro struct {
	Condicao Condicao
	Mensagem string
}

func (e *Erro) Error() string { return e.Mensagem }

// NovoErro cria um Erro com a condição e mensagem informadas.
func NovoErro(condicao Condicao, mensagem string) *Erro {
	return &Erro{Condicao: condicao, Mensagem: mensagem}
}

// TemCondicao informa se err carrega a condição c.
func TemCondicao(err error, c Condicao) bool {
	var e *Erro
	if errors.As(err, &e) {
		return e.Condicao == c
	}
	return false
}
