package nfe

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FormatarValor formata um valor com número fixo de casas decimais, sempre em
// ponto fixo. Valores monetários usam duas casas; quantidades e valores
// unitários, quatro (Pág. 102 do manual de integração).
func FormatarValor(valor decimal.Decimal, casas int32) string {
	return valor.StringFixed(casas)
}

// FormatarData formata datas no leiaute AAAA-MM-DD (Pág. 93 do manual).
func FormatarData(data time.Time) string {
	return data.Format("2006-01-02")
}

// escaparXML escapa os caracteres reservados do XML no texto dos elementos
// (Pág. 71 do manual).
func escaparXML(texto string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(texto)
}

// removedorAcentos decompõe em NFD, descarta as marcas combinantes e
// recompõe em NFC.
var removedorAcentos = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// RemoverAcentos descarta a acentuação do texto. O importador do aplicativo
// emissor da receita rejeita caracteres estendidos, então o dump em texto é
// filtrado antes da gravação.
func RemoverAcentos(texto string) string {
	resultado, _, err := transform.String(removedorAcentos, texto)
	if err != nil {
		return texto
	}
	return resultado
}

// somenteDigitos filtra a cadeia mantendo apenas os dígitos 0-9.
func somenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
