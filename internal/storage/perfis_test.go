package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func novoRepositorioTeste(t *testing.T) *Perfis {
	t.Helper()
	return NovoPerfis(filepath.Join(t.TempDir(), "perfis.json"))
}

func TestGravarECarregar(t *testing.T) {
	caminho := filepath.Join(t.TempDir(), "perfis.json")

	repo := NovoPerfis(caminho)
	perfil := &Perfil{Nome: "Caixa 1", Porta: "/dev/ttyS0", BaudRate: 9600, Modelo: "MP-25 FI"}
	if err := repo.Gravar(perfil); err != nil {
		t.Fatalf("Gravar: %v", err)
	}
	if perfil.ID == "" {
		t.Error("perfil gravado sem identificador")
	}

	outro := NovoPerfis(caminho)
	if err := outro.Carregar(); err != nil {
		t.Fatalf("Carregar: %v", err)
	}
	lidos := outro.Listar()
	if len(lidos) != 1 {
		t.Fatalf("carregados %d perfis, esperado 1", len(lidos))
	}
	if lidos[0].ID != perfil.ID || lidos[0].Porta != "/dev/ttyS0" {
		t.Errorf("perfil lido diverge: %+v", lidos[0])
	}
}

func TestCarregarArquivoInexistente(t *testing.T) {
	repo := novoRepositorioTeste(t)
	if err := repo.Carregar(); err != nil {
		t.Fatalf("arquivo ausente não deveria ser erro: %v", err)
	}
	if len(repo.Listar()) != 0 {
		t.Error("lista deveria começar vazia")
	}
}

func TestGravarAtualizaPelaPorta(t *testing.T) {
	repo := novoRepositorioTeste(t)

	if err := repo.Gravar(&Perfil{Nome: "Caixa 1", Porta: "/dev/ttyS0"}); err != nil {
		t.Fatalf("Gravar: %v", err)
	}
	if err := repo.Gravar(&Perfil{Nome: "Caixa 1 trocado", Porta: "/dev/ttyS0"}); err != nil {
		t.Fatalf("Gravar: %v", err)
	}

	lidos := repo.Listar()
	if len(lidos) != 1 {
		t.Fatalf("perfis = %d, esperado 1 após atualização", len(lidos))
	}
	if lidos[0].Nome != "Caixa 1 trocado" {
		t.Errorf("nome = %s", lidos[0].Nome)
	}
}

func TestListarOrdenaPorUso(t *testing.T) {
	repo := novoRepositorioTeste(t)

	antigo := &Perfil{Nome: "Antigo", Porta: "/dev/ttyS0"}
	recente := &Perfil{Nome: "Recente", Porta: "/dev/ttyS1"}
	if err := repo.Gravar(antigo); err != nil {
		t.Fatalf("Gravar: %v", err)
	}
	if err := repo.Gravar(recente); err != nil {
		t.Fatalf("Gravar: %v", err)
	}
	antigo.UltimoUso = time.Now().Add(-time.Hour)

	lidos := repo.Listar()
	if lidos[0].Nome != "Recente" || lidos[1].Nome != "Antigo" {
		t.Errorf("ordem = %s, %s", lidos[0].Nome, lidos[1].Nome)
	}
}

func TestLimiteDePerfis(t *testing.T) {
	repo := novoRepositorioTeste(t)

	for i := 0; i < maxPerfis+5; i++ {
		perfil := &Perfil{
			Nome:  fmt.Sprintf("Caixa %d", i),
			Porta: fmt.Sprintf("/dev/ttyS%d", i),
		}
		if err := repo.Gravar(perfil); err != nil {
			t.Fatalf("Gravar: %v", err)
		}
	}
	if len(repo.Listar()) != maxPerfis {
		t.Errorf("perfis = %d, esperado teto de %d", len(repo.Listar()), maxPerfis)
	}
}

func TestRemover(t *testing.T) {
	repo := novoRepositorioTeste(t)

	perfil := &Perfil{Nome: "Caixa 1", Porta: "/dev/ttyS0"}
	if err := repo.Gravar(perfil); err != nil {
		t.Fatalf("Gravar: %v", err)
	}
	if err := repo.Remover(perfil.ID); err != nil {
		t.Fatalf("Remover: %v", err)
	}
	if len(repo.Listar()) != 0 {
		t.Error("perfil não removido")
	}
	if err := repo.Remover("inexistente"); err == nil {
		t.Error("remoção de perfil inexistente aceita")
	}
}
