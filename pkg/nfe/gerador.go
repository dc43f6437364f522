// Package nfe gera o documento da Nota Fiscal eletrônica de uma venda:
// monta a chave de acesso de 44 dígitos, o XML no leiaute 1.10 e o dump em
// texto aceito pelo aplicativo emissor da receita.
//
// Os números de página citados nos comentários referem-se ao "Manual de
// integração do contribuinte v3.00"
// (http://www.nfe.fazenda.gov.br/portal/integracao.aspx).
package nfe

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"fiscalbr/internal/ibge"
)

const (
	xmlnsNFe      = "http://www.portalfiscal.inf.br/nfe"
	versaoLeiaute = "1.10"
	modeloNFe     = "55"
)

var (
	// ErrSemNumeroNota indica que a venda chegou ao gerador sem número de
	// documento fiscal atribuído.
	ErrSemNumeroNota = errors.New("nfe: venda sem número de nota fiscal")

	// ErrRegimeNaoSuportado indica um regime de tributação que o gerador
	// ainda não cobre (ICMS integral, substituição tributária, ISS). A
	// geração é interrompida em vez de emitir um documento com imposto
	// errado.
	ErrRegimeNaoSuportado = errors.New("nfe: regime de tributação não suportado")
)

// Gerador monta o documento da NF-e de uma única venda. Um gerador por
// venda: a árvore é montada por Gerar e depois serializada por XML, Txt,
// Salvar ou ExportarTxt; a instância é descartada em seguida.
type Gerador struct {
	venda *Venda
	cfg   Config
	dados *dadosNFe
	chave string
}

// NovoGerador cria o gerador para a venda. Quando a configuração não injeta
// uma fonte para o componente aleatório cNF, usa-se math/rand.
func NovoGerador(venda *Venda, cfg Config) *Gerador {
	if cfg.CNF == nil {
		cfg.CNF = func() int {
			return 100000000 + rand.Intn(900000000)
		}
	}
	if cfg.VersaoProcesso == "" {
		cfg.VersaoProcesso = "fiscalbr"
	}
	return &Gerador{venda: venda, cfg: cfg}
}

// Gerar monta a árvore completa do documento. Qualquer falha de validação
// (número de nota ausente, CNPJ malformado, regime não suportado) interrompe
// a geração por inteiro: não existe documento parcial.
func (g *Gerador) Gerar() error {
	if err := g.adicionarIdentificacao(); err != nil {
		return err
	}
	if err := g.adicionarEmitente(); err != nil {
		return err
	}
	if err := g.adicionarDestinatario(); err != nil {
		return err
	}
	if err := g.adicionarItens(); err != nil {
		return err
	}
	g.adicionarTotais()
	g.adicionarTransporte()
	g.adicionarCobranca()
	g.adicionarInfAdicional()
	return nil
}

// Chave devolve a chave de acesso de 44 dígitos calculada por Gerar.
func (g *Gerador) Chave() string { return g.chave }

// XML serializa a árvore no leiaute XML da NF-e.
func (g *Gerador) XML() []byte {
	var b strings.Builder
	b.WriteString(`<NFe xmlns="` + xmlnsNFe + `">`)
	escreverXML(&b, g.dados)
	b.WriteString("</NFe>")
	return []byte(b.String())
}

// Txt serializa a árvore no formato texto do aplicativo importador, com a
// acentuação removida (o importador rejeita caracteres estendidos).
func (g *Gerador) Txt() []byte {
	var b strings.Builder
	b.WriteString("NOTA FISCAL|1|\n")
	b.WriteString(g.dados.Txt())
	return []byte(RemoverAcentos(b.String()))
}

// Salvar grava o XML em <chave>-nfe.xml no diretório informado e devolve o
// caminho completo. O prefixo literal NFe do Id fica de fora do nome.
func (g *Gerador) Salvar(dir string) (string, error) {
	caminho := filepath.Join(dir, g.chave+"-nfe.xml")
	if err := os.WriteFile(caminho, g.XML(), 0644); err != nil {
		return "", fmt.Errorf("nfe: erro ao gravar XML: %w", err)
	}
	return caminho, nil
}

// ExportarTxt grava o dump em texto em <chave>-nfe.txt e devolve o caminho.
func (g *Gerador) ExportarTxt(dir string) (string, error) {
	caminho := filepath.Join(dir, g.chave+"-nfe.txt")
	if err := os.WriteFile(caminho, g.Txt(), 0644); err != nil {
		return "", fmt.Errorf("nfe: erro ao gravar TXT: %w", err)
	}
	return caminho, nil
}

func (g *Gerador) adicionarIdentificacao() error {
	venda := g.venda
	if venda.NumeroNota == 0 {
		return ErrSemNumeroNota
	}

	emitente := venda.Emitente
	cUF, ok := ibge.CodigoUF(emitente.Endereco.UF)
	if !ok {
		return fmt.Errorf("nfe: UF desconhecida %q", emitente.Endereco.UF)
	}
	cnpj := somenteDigitos(emitente.Documento.Numero)
	if emitente.Documento.Tipo != DocCNPJ || len(cnpj) != 14 {
		return fmt.Errorf("nfe: emitente precisa de CNPJ com 14 dígitos")
	}

	cNF := g.cfg.CNF()
	chave, err := MontarChave(cUF, venda.Emissao, cnpj, 55, g.cfg.Serie, venda.NumeroNota, cNF)
	if err != nil {
		return err
	}
	g.chave = chave

	dados, err := novoDadosNFe(chave)
	if err != nil {
		return err
	}
	g.dados = dados

	cMunFG, _ := ibge.CodigoMunicipio(emitente.Endereco.UF, emitente.Endereco.Municipio)
	ident := novaIdentificacao(venda, g.cfg, cUF, cMunFG, cNF)
	ident.definirDV(chave[43])
	g.dados.anexar(ident)
	return nil
}

func (g *Gerador) adicionarEmitente() error {
	grupo, err := novoEmitente(g.venda.Emitente)
	if err != nil {
		return err
	}
	g.dados.anexar(grupo)
	return nil
}

func (g *Gerador) adicionarDestinatario() error {
	grupo, err := novoDestinatario(g.venda.Destinatario)
	if err != nil {
		return err
	}
	g.dados.anexar(grupo)
	return nil
}

func (g *Gerador) adicionarItens() error {
	// CFOP sem o ponto separador
	cfop := strings.ReplaceAll(g.venda.CFOP, ".", "")

	for i, item := range g.venda.Itens {
		// a numeração dos itens começa em 1
		grupo, err := novoProduto(i+1, item, cfop)
		if err != nil {
			return err
		}
		g.dados.anexar(grupo)
	}
	return nil
}

func (g *Gerador) adicionarTotais() {
	g.dados.anexar(novoTotal(g.venda.TotalVenda(), g.venda.SubtotalItens()))
}

func (g *Gerador) adicionarTransporte() {
	g.dados.anexar(novoTransporte())
	if t := g.venda.Transportadora; t != nil {
		g.dados.anexar(novaTransportadora(*t))
	}

	// um grupo vol por item com peso cadastrado
	for _, item := range g.venda.Itens {
		if !item.PesoUnitario.IsPositive() {
			continue
		}
		peso := item.Quantidade.Mul(item.PesoUnitario)
		g.dados.anexar(novoVolume(item.Quantidade, item.Unidade, peso))
	}
}

func (g *Gerador) adicionarCobranca() {
	g.dados.anexar(novaCobranca())

	venda := g.venda
	g.dados.anexar(novaFatura(venda.NumeroNota, venda.SubtotalItens(),
		venda.Desconto, venda.TotalVenda()))

	for _, pagamento := range venda.Pagamentos {
		g.dados.anexar(novaDuplicata(pagamento))
	}
}

func (g *Gerador) adicionarInfAdicional() {
	g.dados.anexar(novaInfAdicional(g.venda.Observacoes))
}
