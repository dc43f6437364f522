package nfe

import "strings"

// Os grupos do documento formam uma árvore em memória espelhando o leiaute da
// NF-e. Cada tipo concreto de grupo é dono do próprio esquema de campos (uma
// lista ordenada nome/valor construída no construtor), sem estado mutável
// compartilhado entre tipos.

// Campo é um par nome/valor de um grupo. No XML vira um elemento filho; no
// dump em texto vira uma coluna delimitada por pipe.
type Campo struct {
	Nome  string
	Valor string
}

// Grupo é um nó da árvore do documento.
type Grupo interface {
	// Tag é o nome do elemento XML do grupo.
	Tag() string
	// Atributos são os atributos XML do próprio elemento (ex.: nItem do det).
	Atributos() []Campo
	// Campos são os elementos filhos simples, na ordem do leiaute.
	Campos() []Campo
	// CamposFinais são emitidos depois dos grupos filhos (ex.: IE do
	// emitente, que no leiaute vem depois do endereço).
	CamposFinais() []Campo
	// Filhos são os subgrupos, na ordem de inserção.
	Filhos() []Grupo
	// Txt devolve o(s) registro(s) do grupo no formato de texto do
	// aplicativo importador. Vazio quando o grupo não tem registro próprio.
	Txt() string
}

// grupoBase implementa o comportamento comum dos grupos.
type grupoBase struct {
	tag          string
	marcaTxt     string
	atributos    []Campo
	campos       []Campo
	camposFinais []Campo
	filhos       []Grupo
}

func (g *grupoBase) Tag() string           { return g.tag }
func (g *grupoBase) Atributos() []Campo    { return g.atributos }
func (g *grupoBase) Campos() []Campo       { return g.campos }
func (g *grupoBase) CamposFinais() []Campo { return g.camposFinais }
func (g *grupoBase) Filhos() []Grupo       { return g.filhos }

// Txt padrão: marca, um campo por coluna, terminado em pipe e quebra de
// linha. Grupos sem marca não geram registro.
func (g *grupoBase) Txt() string {
	if g.marcaTxt == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(g.marcaTxt)
	b.WriteByte('|')
	for _, c := range g.campos {
		b.WriteString(c.Valor)
		b.WriteByte('|')
	}
	b.WriteByte('\n')
	return b.String()
}

func (g *grupoBase) anexar(filho Grupo) {
	g.filhos = append(g.filhos, filho)
}

// definir atualiza o valor de um campo declarado no esquema do grupo. Campos
// fora do esquema são ignorados de propósito: a ordem do leiaute é fixada na
// construção.
func (g *grupoBase) definir(nome, valor string) {
	for i := range g.campos {
		if g.campos[i].Nome == nome {
			g.campos[i].Valor = valor
			return
		}
	}
	for i := range g.camposFinais {
		if g.camposFinais[i].Nome == nome {
			g.camposFinais[i].Valor = valor
			return
		}
	}
}

func (g *grupoBase) valor(nome string) string {
	for _, c := range g.campos {
		if c.Nome == nome {
			return c.Valor
		}
	}
	for _, c := range g.camposFinais {
		if c.Nome == nome {
			return c.Valor
		}
	}
	return ""
}

// escreverXML serializa o grupo e os descendentes. Campos com valor vazio
// ficam de fora da árvore; no formato texto eles aparecem como colunas
// vazias, mas no XML a tag é simplesmente omitida.
func escreverXML(b *strings.Builder, g Grupo) {
	b.WriteByte('<')
	b.WriteString(g.Tag())
	for _, a := range g.Atributos() {
		b.WriteString(" ")
		b.WriteString(a.Nome)
		b.WriteString(`="`)
		b.WriteString(escaparXML(a.Valor))
		b.WriteString(`"`)
	}
	b.WriteByte('>')

	escreverCampos(b, g.Campos())
	for _, filho := range g.Filhos() {
		escreverXML(b, filho)
	}
	escreverCampos(b, g.CamposFinais())

	b.WriteString("</")
	b.WriteString(g.Tag())
	b.WriteByte('>')
}

func escreverCampos(b *strings.Builder, campos []Campo) {
	for _, c := range campos {
		if c.Valor == "" {
			continue
		}
		b.WriteByte('<')
		b.WriteString(c.Nome)
		b.WriteByte('>')
		b.WriteString(escaparXML(c.Valor))
		b.WriteString("</")
		b.WriteString(c.Nome)
		b.WriteByte('>')
	}
}
