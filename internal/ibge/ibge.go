// Package ibge fornece as tabelas de códigos do IBGE usadas na montagem da
// chave de acesso e nos campos cUF/cMunFG da NF-e.
package ibge

import (
	"strings"
	"sync"
)

// codigosUF mapeia a sigla da UF para o código IBGE de duas posições.
// Tabela completa das 27 unidades da federação.
var codigosUF = map[string]string{
	"RO": "11", "AC": "12", "AM": "13", "RR": "14", "PA": "15",
	"AP": "16", "TO": "17", "MA": "21", "PI": "22", "CE": "23",
	"RN": "24", "PB": "25", "PE": "26", "AL": "27", "SE": "28",
	"BA": "29", "MG": "31", "ES": "32", "RJ": "33", "SP": "35",
	"PR": "41", "SC": "42", "RS": "43", "MS": "50", "MT": "51",
	"GO": "52", "DF": "53",
}

// CodigoUF retorna o código IBGE da UF informada pela sigla.
func CodigoUF(uf string) (string, bool) {
	codigo, ok := codigosUF[strings.ToUpper(strings.TrimSpace(uf))]
	return codigo, ok
}

var (
	munMu sync.RWMutex

	// municipios mapeia "UF/nome normalizado" para o código IBGE de sete
	// posições. A tabela embutida cobre as capitais; municípios adicionais
	// são registrados em tempo de execução via RegistrarMunicipio, a partir
	// do cadastro da aplicação.
	municipios = map[string]string{
		"RO/porto velho":    "1100205",
		"AC/rio branco":     "1200401",
		"AM/manaus":         "1302603",
		"RR/boa vista":      "1400100",
		"PA/belem":          "1501402",
		"AP/macapa":         "1600303",
		"TO/palmas":         "1721000",
		"MA/sao luis":       "2111300",
		"PI/teresina":       "2211001",
		"CE/fortaleza":      "2304400",
		"RN/natal":          "2408102",
		"PB/joao pessoa":    "2507507",
		"PE/recife":         "2611606",
		"AL/maceio":         "2704302",
		"SE/aracaju":        "2800308",
		"BA/salvador":       "2927408",
		"MG/belo horizonte": "3106200",
		"ES/vitoria":        "3205309",
		"RJ/rio de janeiro": "3304557",
		"SP/sao paulo":      "3550308",
		"PR/curitiba":       "4106902",
		"SC/florianopolis":  "4205407",
		"RS/porto alegre":   "4314902",
		"MS/campo grande":   "5002704",
		"MT/cuiaba":         "5103403",
		"GO/goiania":        "5208707",
		"DF/brasilia":       "5300108",
	}
)

// CodigoMunicipio retorna o código IBGE do município na UF informada.
func CodigoMunicipio(uf, municipio string) (string, bool) {
	munMu.RLock()
	defer munMu.RUnlock()
	codigo, ok := municipios[chaveMunicipio(uf, municipio)]
	return codigo, ok
}

// RegistrarMunicipio adiciona ou substitui um município na tabela de
// consulta. O cadastro da aplicação alimenta a tabela na inicialização.
func RegistrarMunicipio(uf, municipio, codigo string) {
	munMu.Lock()
	defer munMu.Unlock()
	municipios[chaveMunicipio(uf, municipio)] = codigo
}

func chaveMunicipio(uf, municipio string) string {
	return strings.ToUpper(strings.TrimSpace(uf)) + "/" +
		normalizar(municipio)
}

// normalizar reduz o nome do município para comparação: minúsculas, espaços
// colapsados e vogais acentuadas substituídas pela forma simples.
func normalizar(nome string) string {
	nome = strings.ToLower(strings.TrimSpace(nome))
	substituicoes := strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
	)
	nome = substituicoes.Replace(nome)
	return strings.Join(strings.Fields(nome), " ")
}
