package mp25

import (
	"testing"

	"fiscalbr/pkg/cupom"
)

func TestDecodificarStatus(t *testing.T) {
	tests := []struct {
		name     string
		resposta []byte
		aviso    bool
		condicao cupom.Condicao
	}{
		{
			name:     "sem erro",
			resposta: []byte{ack, 0, 0, 0, 0},
		},
		{
			name:     "pouco papel é só aviso",
			resposta: []byte{ack, 64, 0, 0, 0},
			aviso:    true,
		},
		{
			name:     "sem papel",
			resposta: []byte{ack, 128, 0, 0, 0},
			condicao: cupom.CondicaoSemPapel,
		},
		{
			name:     "pouco papel junto com sem papel",
			resposta: []byte{ack, 192, 0, 0, 0},
			aviso:    true,
			condicao: cupom.CondicaoSemPapel,
		},
		{
			name:     "cupom aberto no ST1",
			resposta: []byte{ack, 2, 0, 0, 0},
			condicao: cupom.CondicaoCupomAberto,
		},
		{
			name:     "comando inexistente",
			resposta: []byte{ack, 4, 0, 0, 0},
			condicao: cupom.CondicaoErroComando,
		},
		{
			name:     "memória fiscal lotada no ST2",
			resposta: []byte{ack, 0, 64, 0, 0},
			condicao: cupom.CondicaoFalhaHardware,
		},
		{
			name:     "ST3 detalha o comando não executado",
			resposta: []byte{ack, 0, 1, 169, 0},
			condicao: cupom.CondicaoErroTotalizacao,
		},
		{
			name:     "ST3 cupom sem itens",
			resposta: []byte{ack, 0, 1, 17, 0},
			condicao: cupom.CondicaoErroDriver,
		},
		{
			name:     "ST3 não mapeado cai na tabela do ST2",
			resposta: []byte{ack, 0, 1, 99, 0},
			condicao: cupom.CondicaoErroComando,
		},
		{
			name:     "NAK",
			resposta: []byte{nak, 0, 0, 0, 0},
			condicao: cupom.CondicaoErroDriver,
		},
		{
			name:     "resposta truncada",
			resposta: []byte{ack, 0},
			condicao: cupom.CondicaoErroDriver,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aviso, err := decodificarStatus(tt.resposta)
			if aviso != tt.aviso {
				t.Errorf("aviso = %v, esperado %v", aviso, tt.aviso)
			}
			if tt.condicao == 0 {
				if err != nil {
					t.Fatalf("erro inesperado: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("esperava erro, veio nil")
			}
			if !cupom.TemCondicao(err, tt.condicao) {
				t.Errorf("erro %v sem a condição %d", err, tt.condicao)
			}
		})
	}
}
