package nfe

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatarValor(t *testing.T) {
	tests := []struct {
		name     string
		valor    string
		casas    int32
		esperado string
	}{
		{"monetário inteiro", "10", 2, "10.00"},
		{"arredondamento para cima", "1.005", 2, "1.01"},
		{"quantidade com quatro casas", "2.5", 4, "2.5000"},
		{"zero", "0", 2, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valor := decimal.RequireFromString(tt.valor)
			if got := FormatarValor(valor, tt.casas); got != tt.esperado {
				t.Errorf("FormatarValor(%s, %d) = %s, esperado %s",
					tt.valor, tt.casas, got, tt.esperado)
			}
		})
	}
}

func TestFormatarData(t *testing.T) {
	data := time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC)
	if got := FormatarData(data); got != "2024-01-05" {
		t.Errorf("FormatarData = %s, esperado 2024-01-05", got)
	}
}

func TestRemoverAcentos(t *testing.T) {
	tests := []struct {
		entrada  string
		esperado string
	}{
		{"calça", "calca"},
		{"São Paulo", "Sao Paulo"},
		{"AÇÚCAR CRISTAL", "ACUCAR CRISTAL"},
		{"sem acento", "sem acento"},
	}
	for _, tt := range tests {
		if got := RemoverAcentos(tt.entrada); got != tt.esperado {
			t.Errorf("RemoverAcentos(%q) = %q, esperado %q", tt.entrada, got, tt.esperado)
		}
	}
}

func TestEscaparXML(t *testing.T) {
	if got := escaparXML("Pão & Cia <matriz>"); got != "Pão &amp; Cia &lt;matriz&gt;" {
		t.Errorf("escaparXML = %q", got)
	}
}

func TestSomenteDigitos(t *testing.T) {
	if got := somenteDigitos("12.345.678/0001-99"); got != "12345678000199" {
		t.Errorf("somenteDigitos = %q", got)
	}
}
