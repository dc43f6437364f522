// Package mp25 implementa o protocolo serial das impressoras fiscais
// Bematech da família MP-25 (MP-20 FI II, MP-25 FI e compatíveis).
//
// Os números de página citados nos comentários referem-se ao manual
// "Comandos de programação MP-20 FI II / MP-25 FI" da Bematech.
package mp25

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	stx = 0x02
	ack = 0x06
	nak = 0x15

	// protocoloEstendido prefixa todo comando e seleciona as respostas com
	// ST3 (dois bytes extras de status). Pág. 10.
	protocoloEstendido = 0x1C
)

// Bytes de comando. Pág. 12.
const (
	cmdAbrirCupom         = 0
	cmdReducaoZ           = 5
	cmdLeituraX           = 6
	cmdCancelarCupom      = 14
	cmdVale               = 25
	cmdSubtotal           = 29
	cmdNumeroCupom        = 30
	cmdCancelarItem       = 31
	cmdTotalizar          = 32
	cmdFecharCupom        = 34
	cmdLerVariavel        = 35
	cmdAdicionarItem      = 63
	cmdAdicionarPagamento = 72
)

// Variáveis de CMD_READ_REGISTER. Pág. 87.
const (
	varUltimoItem = 12
)

// montarPacote enquadra um comando para envio:
//
//	STX | NBL NBH | 0x1C <comando> | CSL CSH
//
// NB é o tamanho dos dados mais os dois bytes do checksum; o checksum é a
// soma aritmética de 16 bits dos dados, byte baixo primeiro. Pág. 11.
func montarPacote(comando []byte) []byte {
	dados := make([]byte, 0, len(comando)+1)
	dados = append(dados, protocoloEstendido)
	dados = append(dados, comando...)

	soma := 0
	for _, b := range dados {
		soma += int(b)
	}

	nb := len(dados) + 2
	pacote := make([]byte, 0, len(dados)+5)
	pacote = append(pacote, stx, byte(nb&0xFF), byte(nb>>8))
	pacote = append(pacote, dados...)
	pacote = append(pacote, byte(soma&0xFF), byte(soma>>8))
	return pacote
}

// bcdParaInt decodifica um inteiro BCD: cada byte carrega dois dígitos
// decimais, nibble alto primeiro. Os campos numéricos das respostas
// (subtotal, número do cupom, registradores) vêm nesse formato. Pág. 86.
func bcdParaInt(dados []byte) (int64, error) {
	var valor int64
	for _, b := range dados {
		alto, baixo := b>>4, b&0x0F
		if alto > 9 || baixo > 9 {
			return 0, fmt.Errorf("mp25: byte %#02x não é BCD", b)
		}
		valor = valor*100 + int64(alto)*10 + int64(baixo)
	}
	return valor, nil
}

// centavos converte um valor monetário para centavos inteiros.
func centavos(valor decimal.Decimal) int64 {
	return valor.Shift(2).Round(0).IntPart()
}

// milesimos converte quantidade ou preço unitário para milésimos inteiros,
// a precisão dos campos de item do equipamento.
func milesimos(valor decimal.Decimal) int64 {
	return valor.Shift(3).Round(0).IntPart()
}
