package nfe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fiscalbr/internal/ibge"
)

// Os números de página citados abaixo referem-se ao "Manual de integração do
// contribuinte v3.00", disponível no portal da NF-e.

// dadosNFe é o grupo infNFe (Pág. 92), raiz de todos os demais grupos.
type dadosNFe struct {
	grupoBase
}

func novoDadosNFe(chave string) (*dadosNFe, error) {
	// Pág. 92
	if len(chave) != 44 {
		return nil, fmt.Errorf("nfe: chave de acesso precisa de 44 dígitos, tem %d", len(chave))
	}
	return &dadosNFe{grupoBase{
		tag:      "infNFe",
		marcaTxt: "A",
		atributos: []Campo{
			{"xmlns", xmlnsNFe},
			{"versao", versaoLeiaute},
			{"Id", "NFe" + chave},
		},
	}}, nil
}

// ID devolve o valor do atributo Id (literal "NFe" + chave de acesso).
func (d *dadosNFe) ID() string {
	return d.atributos[2].Valor
}

func (d *dadosNFe) Txt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "A|%s|%s|\n", versaoLeiaute, d.ID())
	for _, filho := range d.filhos {
		b.WriteString(filho.Txt())
	}
	return b.String()
}

// identificacao é o grupo ide (Pág. 92), registro B.
type identificacao struct {
	grupoBase
}

func novaIdentificacao(v *Venda, cfg Config, cUF, cMunFG string, cNF int) *identificacao {
	// Pagamento a vista apenas quando a venda tem uma única parcela com
	// vencimento na própria emissão; qualquer outra coisa é a prazo.
	indPag := "1"
	if len(v.Pagamentos) == 1 {
		vencimento := v.Pagamentos[0].Vencimento
		if vencimento.Year() == v.Emissao.Year() && vencimento.YearDay() == v.Emissao.YearDay() {
			indPag = "0"
		}
	}

	tpImp := "2"
	if cfg.Orientacao == OrientacaoRetrato {
		tpImp = "1"
	}
	tpAmb := "1"
	if cfg.Ambiente == AmbienteHomologacao {
		tpAmb = "2"
	}
	natureza := v.Natureza
	if natureza == "" {
		natureza = "venda"
	}

	return &identificacao{grupoBase{
		tag:      "ide",
		marcaTxt: "B",
		campos: []Campo{
			{"cUF", cUF},
			{"cNF", fmt.Sprintf("%09d", cNF)},
			{"natOp", natureza},
			{"indPag", indPag},
			{"mod", modeloNFe},
			{"serie", strconv.Itoa(cfg.Serie)},
			{"nNF", strconv.Itoa(v.NumeroNota)},
			{"dEmi", FormatarData(v.Emissao)},
			{"dSaiEnt", ""},
			{"tpNF", "1"},
			{"cMunFG", cMunFG},
			{"tpImp", tpImp},
			{"tpEmis", "1"},
			{"cDV", ""},
			{"tpAmb", tpAmb},
			{"finNFe", "1"},
			{"procEmi", "3"},
			{"verProc", cfg.VersaoProcesso},
		},
	}}
}

func (i *identificacao) definirDV(dv byte) {
	i.definir("cDV", string(dv))
}

// endereco é o grupo enderEmit/enderDest (C05/E05).
type endereco struct {
	grupoBase
}

func novoEndereco(tag, marca string, e Endereco) *endereco {
	cMun, _ := ibge.CodigoMunicipio(e.UF, e.Municipio)
	return &endereco{grupoBase{
		tag:      tag,
		marcaTxt: marca,
		campos: []Campo{
			{"xLgr", e.Logradouro},
			{"nro", e.Numero},
			{"xCpl", e.Complemento},
			{"xBairro", e.Bairro},
			{"cMun", cMun},
			{"xMun", e.Municipio},
			{"UF", e.UF},
			{"CEP", somenteDigitos(e.CEP)},
			{"cPais", "1058"},
			{"xPais", "BRASIL"},
			{"fone", somenteDigitos(e.Telefone)},
		},
	}}
}

// parte é a base comum de emitente (C, Pág. 96) e destinatário (E, Pág. 99).
// O leiaute exige a IE depois do endereço, por isso ela fica nos campos
// finais do grupo.
type parte struct {
	grupoBase
	marcaCNPJ string
	marcaCPF  string
	endereco  *endereco
}

func novaParte(tag, marca, marcaEndereco, marcaCNPJ, marcaCPF string, p Pessoa) (*parte, error) {
	campos := []Campo{
		{"CNPJ", ""},
		{"CPF", ""},
		{"xNome", p.Nome},
	}
	switch p.Documento.Tipo {
	case DocCNPJ:
		cnpj := somenteDigitos(p.Documento.Numero)
		if len(cnpj) != 14 {
			return nil, fmt.Errorf("nfe: CNPJ de %q precisa de 14 dígitos, tem %d", p.Nome, len(cnpj))
		}
		campos[0].Valor = cnpj
	case DocCPF:
		campos[1].Valor = somenteDigitos(p.Documento.Numero)
	default:
		return nil, fmt.Errorf("nfe: pessoa %q sem documento (CNPJ ou CPF)", p.Nome)
	}

	g := &parte{
		grupoBase: grupoBase{
			tag:      tag,
			marcaTxt: marca,
			campos:   campos,
			camposFinais: []Campo{
				{"IE", p.InscricaoEstadual},
			},
		},
		marcaCNPJ: marcaCNPJ,
		marcaCPF:  marcaCPF,
		endereco:  novoEndereco(tagEndereco(tag), marcaEndereco, p.Endereco),
	}
	g.anexar(g.endereco)
	return g, nil
}

func tagEndereco(tagParte string) string {
	if tagParte == "emit" {
		return "enderEmit"
	}
	return "enderDest"
}

func (p *parte) inscricaoTxt() string {
	// Com CNPJ, IE vazia é exportada como ISENTO; com CPF ela não se aplica.
	if p.valor("CNPJ") != "" {
		if ie := p.valor("IE"); ie != "" {
			return ie
		}
		return "ISENTO"
	}
	return ""
}

func (p *parte) documentoTxt() string {
	if cnpj := p.valor("CNPJ"); cnpj != "" {
		return fmt.Sprintf("%s|%s|\n", p.marcaCNPJ, cnpj)
	}
	return fmt.Sprintf("%s|%s|\n", p.marcaCPF, p.valor("CPF"))
}

// emitente é o grupo emit (Pág. 96).
type emitente struct {
	parte
}

func novoEmitente(p Pessoa) (*emitente, error) {
	base, err := novaParte("emit", "C", "C05", "C02", "C02a", p)
	if err != nil {
		return nil, err
	}
	return &emitente{*base}, nil
}

func (e *emitente) Txt() string {
	base := fmt.Sprintf("C|%s||%s|||\n", e.valor("xNome"), e.inscricaoTxt())
	return base + e.documentoTxt() + e.endereco.Txt()
}

// destinatario é o grupo dest (Pág. 99).
type destinatario struct {
	parte
}

func novoDestinatario(p Pessoa) (*destinatario, error) {
	base, err := novaParte("dest", "E", "E05", "E02", "E03", p)
	if err != nil {
		return nil, err
	}
	return &destinatario{*base}, nil
}

func (d *destinatario) Txt() string {
	base := fmt.Sprintf("E|%s|%s|\n", d.valor("xNome"), d.inscricaoTxt())
	return base + d.documentoTxt() + d.endereco.Txt()
}

// produto é o grupo det (Pág. 102), registro H, com os detalhes do produto e
// o bloco de impostos como filhos.
type produto struct {
	grupoBase
	detalhes *detalhesProduto
	imposto  *imposto
}

func novoProduto(numero int, item ItemVenda, cfop string) (*produto, error) {
	imp, err := novoImposto(item.Regime)
	if err != nil {
		return nil, err
	}
	p := &produto{
		grupoBase: grupoBase{
			tag: "det",
			atributos: []Campo{
				{"nItem", strconv.Itoa(numero)},
			},
		},
		detalhes: novosDetalhesProduto(item, cfop),
		imposto:  imp,
	}
	p.anexar(p.detalhes)
	p.anexar(p.imposto)
	return p, nil
}

func (p *produto) Txt() string {
	base := fmt.Sprintf("H|%s||\n", p.atributos[0].Valor)
	return base + p.detalhes.Txt() + p.imposto.Txt()
}

// detalhesProduto é o grupo prod (Pág. 102), registro I.
type detalhesProduto struct {
	grupoBase
}

func novosDetalhesProduto(item ItemVenda, cfop string) *detalhesProduto {
	unidade := item.Unidade
	if unidade == "" {
		unidade = "un"
	}

	// cEAN só é aceito nos quatro comprimentos do GTIN; qualquer outro
	// comprimento deixa o campo de fora.
	cEAN := ""
	switch len(item.CodigoBarras) {
	case 8, 12, 13, 14:
		cEAN = item.CodigoBarras
	}

	return &detalhesProduto{grupoBase{
		tag:      "prod",
		marcaTxt: "I",
		campos: []Campo{
			{"cProd", item.Codigo},
			{"cEAN", cEAN},
			{"xProd", item.Descricao},
			{"NCM", item.NCM},
			{"EXTIPI", item.ExTIPI},
			{"genero", item.Genero},
			{"CFOP", cfop},
			{"uCom", unidade},
			{"qCom", FormatarValor(item.Quantidade, 4)},
			{"vUnCom", FormatarValor(item.PrecoUnitario, 4)},
			{"vProd", FormatarValor(item.Total(), 2)},
			{"cEANTrib", ""},
			{"uTrib", unidade},
			{"qTrib", FormatarValor(item.Quantidade, 4)},
			{"vUnTrib", FormatarValor(item.PrecoUnitario, 4)},
		},
	}}
}

func (d *detalhesProduto) Txt() string {
	base := d.grupoBase.Txt()
	// o registro I termina com três colunas reservadas vazias
	return strings.TrimSuffix(base, "\n") + "|||\n"
}

// imposto é o grupo imposto (Pág. 107). No formato texto os marcadores M e N
// precedem o bloco do ICMS.
type imposto struct {
	grupoBase
	icms   *icms
	pis    *pis
	cofins *cofins
}

func novoImposto(regime RegimeTributario) (*imposto, error) {
	icmsGrupo, err := novoICMS(regime)
	if err != nil {
		return nil, err
	}
	imp := &imposto{
		grupoBase: grupoBase{tag: "imposto"},
		icms:      icmsGrupo,
		pis:       novoPIS(),
		cofins:    novoCOFINS(),
	}
	imp.anexar(imp.icms)
	imp.anexar(imp.pis)
	imp.anexar(imp.cofins)
	return imp, nil
}

func (i *imposto) Txt() string {
	return "M|\nN|\n" + i.icms.Txt() + i.pis.Txt() + i.cofins.Txt()
}

// icms embrulha a variante de tributação escolhida (Pág. 107).
type icms struct {
	grupoBase
	variante *icms40
}

func novoICMS(regime RegimeTributario) (*icms, error) {
	variante, err := novoICMS40(regime)
	if err != nil {
		return nil, err
	}
	g := &icms{
		grupoBase: grupoBase{tag: "ICMS"},
		variante:  variante,
	}
	g.anexar(variante)
	return g, nil
}

func (i *icms) Txt() string { return i.variante.Txt() }

// icms40 cobre Isenta (CST 40) e Não tributada (CST 41), Pág. 111. Os demais
// regimes do leiaute (ICMS integral, substituição tributária, ISS) ainda não
// são suportados: em vez de emitir um documento com imposto errado, a geração
// é interrompida com ErrRegimeNaoSuportado.
type icms40 struct {
	grupoBase
}

func novoICMS40(regime RegimeTributario) (*icms40, error) {
	var cst string
	switch regime {
	case RegimeIsento:
		cst = "40"
	case RegimeNaoTributado:
		cst = "41"
	default:
		return nil, fmt.Errorf("%w: regime %d", ErrRegimeNaoSuportado, regime)
	}
	return &icms40{grupoBase{
		tag:      "ICMS40",
		marcaTxt: "N06",
		campos: []Campo{
			{"orig", "0"},
			{"CST", cst},
		},
	}}, nil
}

// pis é o grupo PIS (Pág. 117) com a variante PISOutr (CST 99).
type pis struct {
	grupoBase
	outr *pisOutr
}

func novoPIS() *pis {
	g := &pis{
		grupoBase: grupoBase{tag: "PIS"},
		outr: &pisOutr{grupoBase{
			tag: "PISOutr",
			campos: []Campo{
				{"CST", "99"},
				{"vBC", "0"},
				{"pPIS", "0"},
				{"vPIS", "0"},
			},
		}},
	}
	g.anexar(g.outr)
	return g
}

func (p *pis) Txt() string {
	return "Q|\n" + p.outr.Txt()
}

type pisOutr struct {
	grupoBase
}

func (p *pisOutr) Txt() string {
	return fmt.Sprintf("Q05|%s|%s|\nQ07|%s|%s|\n",
		p.valor("CST"), p.valor("vPIS"), p.valor("vBC"), p.valor("pPIS"))
}

// cofins é o grupo COFINS (Pág. 120) com a variante COFINSOutr (CST 99).
type cofins struct {
	grupoBase
	outr *cofinsOutr
}

func novoCOFINS() *cofins {
	g := &cofins{
		grupoBase: grupoBase{tag: "COFINS"},
		outr: &cofinsOutr{grupoBase{
			tag: "COFINSOutr",
			campos: []Campo{
				{"CST", "99"},
				{"vBC", "0"},
				{"pCOFINS", "0"},
				{"vCOFINS", "0"},
			},
		}},
	}
	g.anexar(g.outr)
	return g
}

func (c *cofins) Txt() string {
	return "S|\n" + c.outr.Txt()
}

type cofinsOutr struct {
	grupoBase
}

func (c *cofinsOutr) Txt() string {
	return fmt.Sprintf("S05|%s|%s|\nS07|%s|%s|\n",
		c.valor("CST"), c.valor("vCOFINS"), c.valor("vBC"), c.valor("pCOFINS"))
}

// total é o grupo total (Pág. 123), registro W.
type total struct {
	grupoBase
	icmsTotal *icmsTotal
}

func novoTotal(totalVenda, subtotalItens decimal.Decimal) *total {
	g := &total{
		grupoBase: grupoBase{tag: "total"},
		icmsTotal: novoICMSTotal(totalVenda, subtotalItens),
	}
	g.anexar(g.icmsTotal)
	return g
}

func (t *total) Txt() string {
	return "W|\n" + t.icmsTotal.Txt()
}

// icmsTotal é o grupo ICMSTot (Pág. 123), registro W02. O desconto só é
// preenchido quando o subtotal dos itens supera o total da venda.
type icmsTotal struct {
	grupoBase
}

func novoICMSTotal(totalVenda, subtotalItens decimal.Decimal) *icmsTotal {
	vDesc := "0"
	if desconto := subtotalItens.Sub(totalVenda); desconto.IsPositive() {
		vDesc = FormatarValor(desconto, 2)
	}
	return &icmsTotal{grupoBase{
		tag:      "ICMSTot",
		marcaTxt: "W02",
		campos: []Campo{
			{"vBC", FormatarValor(totalVenda, 2)},
			{"vICMS", "0.00"},
			{"vBCST", "0"},
			{"vST", "0"},
			{"vProd", FormatarValor(subtotalItens, 2)},
			{"vFrete", "0"},
			{"vSeg", "0"},
			{"vDesc", vDesc},
			{"vII", "0"},
			{"vIPI", "0"},
			{"vPIS", "0"},
			{"vCOFINS", "0"},
			{"vOutro", "0"},
			{"vNF", FormatarValor(totalVenda, 2)},
		},
	}}
}

// transporte é o grupo transp (Pág. 124), registro X. Frete por conta do
// destinatário por padrão.
type transporte struct {
	grupoBase
}

func novoTransporte() *transporte {
	return &transporte{grupoBase{
		tag:      "transp",
		marcaTxt: "X",
		campos: []Campo{
			{"modFrete", "1"},
		},
	}}
}

// transportadora é o grupo transporta (Pág. 124), registro X03.
type transportadora struct {
	grupoBase
}

func novaTransportadora(p Pessoa) *transportadora {
	campos := []Campo{
		{"CNPJ", ""},
		{"CPF", ""},
		{"xNome", p.Nome},
		{"IE", ""},
		{"xEnder", ""},
		{"xMun", ""},
		{"UF", ""},
	}
	switch p.Documento.Tipo {
	case DocCPF:
		campos[1].Valor = somenteDigitos(p.Documento.Numero)
	case DocCNPJ:
		campos[0].Valor = somenteDigitos(p.Documento.Numero)
		campos[3].Valor = p.InscricaoEstadual
	}

	if e := p.Endereco; e.Logradouro != "" {
		linha := e.Logradouro
		if e.Numero != "" {
			linha += ", " + e.Numero
		}
		campos[4].Valor = truncar(linha, 60)
		campos[5].Valor = truncar(e.Municipio, 60)
		campos[6].Valor = e.UF
	}

	return &transportadora{grupoBase{
		tag:      "transporta",
		marcaTxt: "X03",
		campos:   campos,
	}}
}

func (t *transportadora) Txt() string {
	base := fmt.Sprintf("X03|%s|%s|%s|%s|%s\n",
		t.valor("xNome"), t.valor("IE"), t.valor("xEnder"),
		t.valor("UF"), t.valor("xMun"))
	if cnpj := t.valor("CNPJ"); cnpj != "" {
		return base + fmt.Sprintf("X04|%s|\n", cnpj)
	}
	return base + fmt.Sprintf("X05|%s|\n", t.valor("CPF"))
}

func truncar(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// volume é o grupo vol (registro X26), gerado a partir do peso dos itens.
type volume struct {
	grupoBase
}

func novoVolume(quantidade decimal.Decimal, unidade string, peso decimal.Decimal) *volume {
	pesoTxt := ""
	if peso.IsPositive() {
		pesoTxt = FormatarValor(peso, 3)
	}
	return &volume{grupoBase{
		tag:      "vol",
		marcaTxt: "X26",
		campos: []Campo{
			{"qVol", quantidade.Ceil().String()},
			{"esp", unidade},
			{"marca", ""},
			{"nVol", ""},
			{"pesoL", pesoTxt},
			{"pesoB", pesoTxt},
		},
	}}
}

// cobranca é o grupo cobr (Pág. 126), registro Y.
type cobranca struct {
	grupoBase
}

func novaCobranca() *cobranca {
	return &cobranca{grupoBase{tag: "cobr", marcaTxt: "Y"}}
}

// fatura é o grupo fat, registro Y02.
type fatura struct {
	grupoBase
}

func novaFatura(numero int, original, desconto, liquido decimal.Decimal) *fatura {
	vDesc := ""
	if desconto.IsPositive() {
		vDesc = FormatarValor(desconto, 2)
	}
	return &fatura{grupoBase{
		tag:      "fat",
		marcaTxt: "Y02",
		campos: []Campo{
			{"nFat", strconv.Itoa(numero)},
			{"vOrig", FormatarValor(original, 2)},
			{"vDesc", vDesc},
			{"vLiq", FormatarValor(liquido, 2)},
		},
	}}
}

// duplicata é o grupo dup, registro Y07, um por parcela.
type duplicata struct {
	grupoBase
}

func novaDuplicata(p Pagamento) *duplicata {
	return &duplicata{grupoBase{
		tag:      "dup",
		marcaTxt: "Y07",
		campos: []Campo{
			{"nDup", p.Numero},
			{"dVenc", FormatarData(p.Vencimento)},
			{"vDup", FormatarValor(p.Valor, 2)},
		},
	}}
}

// infAdicional é o grupo infAdic, registro Z. A mensagem do Simples Nacional
// é fixa; as observações da venda entram em infCpl.
type infAdicional struct {
	grupoBase
}

const mensagemSimples = "Documento emitido por ME ou EPP optante pelo SIMPLES" +
	" NACIONAL. Não gera Direito a Crédito Fiscal de ICMS e de ISS." +
	" Conforme Lei Complementar 123 de 14/12/2006."

func novaInfAdicional(observacoes string) *infAdicional {
	return &infAdicional{grupoBase{
		tag:      "infAdic",
		marcaTxt: "Z",
		campos: []Campo{
			{"infAdFisco", mensagemSimples},
			{"infCpl", observacoes},
		},
	}}
}
