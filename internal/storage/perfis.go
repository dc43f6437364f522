// Package storage guarda os perfis de conexão com impressoras fiscais em um
// arquivo JSON: porta, baud e modelo usados por último em cada ponto de
// venda.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxPerfis limita o arquivo; acima disso os perfis menos usados são
// descartados.
const maxPerfis = 20

// Perfil é um perfil de conexão com uma impressora fiscal.
type Perfil struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Porta     string    `json:"porta"`
	BaudRate  int       `json:"baud_rate"`
	Modelo    string    `json:"modelo"`
	UltimoUso time.Time `json:"ultimo_uso"`
}

// perfisData é o envelope de serialização do arquivo.
type perfisData struct {
	Perfis []*Perfil `json:"perfis"`
}

// Perfis gerencia o armazenamento dos perfis de conexão.
type Perfis struct {
	mu      sync.RWMutex
	itens   []*Perfil
	caminho string
}

// NovoPerfis cria o repositório apontando para o arquivo informado.
func NovoPerfis(caminho string) *Perfis {
	return &Perfis{
		caminho: caminho,
		itens:   make([]*Perfil, 0),
	}
}

// Carregar lê os perfis do arquivo JSON.
func (p *Perfis) Carregar() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dados, err := os.ReadFile(p.caminho)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[PERFIS] Arquivo de perfis não encontrado (%s), começando com lista vazia", p.caminho)
			p.itens = make([]*Perfil, 0)
			return nil
		}
		return fmt.Errorf("erro ao ler arquivo de perfis: %w", err)
	}

	var pd perfisData
	if err := json.Unmarshal(dados, &pd); err != nil {
		p.itens = make([]*Perfil, 0)
		return fmt.Errorf("erro ao interpretar JSON de perfis: %w", err)
	}

	log.Printf("[PERFIS] Carregados %d perfis de %s", len(pd.Perfis), p.caminho)
	p.itens = pd.Perfis
	return nil
}

// Salvar grava os perfis no arquivo JSON.
func (p *Perfis) Salvar() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.salvarBloqueado()
}

func (p *Perfis) salvarBloqueado() error {
	dados, err := json.MarshalIndent(perfisData{Perfis: p.itens}, "", "  ")
	if err != nil {
		return fmt.Errorf("erro ao serializar perfis: %w", err)
	}
	if err := os.WriteFile(p.caminho, dados, 0644); err != nil {
		return fmt.Errorf("erro ao gravar arquivo de perfis: %w", err)
	}
	return nil
}

// Listar devolve os perfis ordenados do mais recente para o mais antigo.
func (p *Perfis) Listar() []*Perfil {
	p.mu.RLock()
	defer p.mu.RUnlock()

	resultado := make([]*Perfil, len(p.itens))
	copy(resultado, p.itens)
	sort.Slice(resultado, func(i, j int) bool {
		return resultado[i].UltimoUso.After(resultado[j].UltimoUso)
	})
	return resultado
}

// Buscar localiza um perfil pelo identificador.
func (p *Perfis) Buscar(id string) (*Perfil, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, perfil := range p.itens {
		if perfil.ID == id {
			return perfil, true
		}
	}
	return nil, false
}

// Gravar adiciona ou atualiza um perfil, chaveado pela porta. Perfis novos
// recebem um identificador; quando o limite é excedido, o menos usado sai.
func (p *Perfis) Gravar(perfil *Perfil) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if perfil.ID == "" {
		perfil.ID = uuid.NewString()
	}
	perfil.UltimoUso = time.Now()

	encontrado := false
	for i, existente := range p.itens {
		if existente.Porta == perfil.Porta {
			p.itens[i] = perfil
			encontrado = true
			break
		}
	}
	if !encontrado {
		p.itens = append(p.itens, perfil)
	}

	if len(p.itens) > maxPerfis {
		sort.Slice(p.itens, func(i, j int) bool {
			return p.itens[i].UltimoUso.After(p.itens[j].UltimoUso)
		})
		p.itens = p.itens[:maxPerfis]
	}
	return p.salvarBloqueado()
}

// MarcarUso atualiza o instante de último uso do perfil.
func (p *Perfis) MarcarUso(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, perfil := range p.itens {
		if perfil.ID == id {
			perfil.UltimoUso = time.Now()
			return p.salvarBloqueado()
		}
	}
	return fmt.Errorf("perfil %s não encontrado", id)
}

// Remover descarta o perfil pelo identificador.
func (p *Perfis) Remover(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, perfil := range p.itens {
		if perfil.ID == id {
			p.itens = append(p.itens[:i], p.itens[i+1:]...)
			return p.salvarBloqueado()
		}
	}
	return fmt.Errorf("perfil %s não encontrado", id)
}
