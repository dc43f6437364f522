package mp25

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	baudPadrao    = 9600
	timeoutPadrao = 5 * time.Second
)

// Config descreve a conexão serial com a impressora.
type Config struct {
	// Porta é o dispositivo serial ("/dev/ttyS0", "COM1").
	Porta string

	// BaudRate da porta; zero usa 9600 (8N1, fixo no equipamento).
	BaudRate int

	// Timeout de leitura por comando; zero usa 5s.
	Timeout time.Duration

	// Logger recebe o tráfego de baixo nível quando definido.
	Logger func(formato string, args ...any)
}

// Transporte serializa o acesso à porta: um comando por vez, resposta lida
// por inteiro dentro do timeout. Não há retransmissão; falha de timeout sobe
// para o chamador decidir.
type Transporte struct {
	cfg Config

	mu    sync.Mutex
	porta io.ReadWriteCloser
}

// NovoTransporte cria o transporte para a porta configurada. A conexão só é
// aberta em Conectar.
func NovoTransporte(cfg Config) *Transporte {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = baudPadrao
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeoutPadrao
	}
	return &Transporte{cfg: cfg}
}

// NovoTransporteComPorta monta o transporte sobre uma porta já aberta.
// Usado nos testes com uma porta roteirizada e em cenários de socket serial.
func NovoTransporteComPorta(porta io.ReadWriteCloser) *Transporte {
	return &Transporte{cfg: Config{Timeout: timeoutPadrao}, porta: porta}
}

// Conectar abre a porta serial em 8N1 com o baud configurado.
func (t *Transporte) Conectar() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.porta != nil {
		return nil
	}

	modo := &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	porta, err := serial.Open(t.cfg.Porta, modo)
	if err != nil {
		return fmt.Errorf("mp25: erro ao abrir %s: %w", t.cfg.Porta, err)
	}
	if err := porta.SetReadTimeout(t.cfg.Timeout); err != nil {
		porta.Close()
		return fmt.Errorf("mp25: erro ao configurar timeout: %w", err)
	}
	t.porta = porta
	t.logf("porta %s aberta a %d baud", t.cfg.Porta, t.cfg.BaudRate)
	return nil
}

// Desconectar fecha a porta.
func (t *Transporte) Desconectar() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.porta == nil {
		return nil
	}
	err := t.porta.Close()
	t.porta = nil
	return err
}

// Trocar envia um pacote e lê exatamente n bytes de resposta.
func (t *Transporte) Trocar(pacote []byte, n int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.porta == nil {
		return nil, fmt.Errorf("mp25: porta não conectada")
	}

	t.logf("-> % x", pacote)
	if _, err := t.porta.Write(pacote); err != nil {
		return nil, fmt.Errorf("mp25: erro de escrita: %w", err)
	}

	resposta := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(resposta) < n {
		lido, err := t.porta.Read(buf[:n-len(resposta)])
		if err != nil {
			return nil, fmt.Errorf("mp25: erro de leitura: %w", err)
		}
		if lido == 0 {
			// go.bug.st/serial devolve 0 bytes sem erro ao estourar o
			// timeout de leitura
			return nil, fmt.Errorf("mp25: timeout aguardando resposta (%d de %d bytes)",
				len(resposta), n)
		}
		resposta = append(resposta, buf[:lido]...)
	}
	t.logf("<- % x", resposta)
	return resposta, nil
}

func (t *Transporte) logf(formato string, args ...any) {
	if t.cfg.Logger != nil {
		t.cfg.Logger(formato, args...)
	}
}
