package nfe

import (
	"fmt"
	"time"
)

// O cálculo da chave de acesso e do dígito verificador segue o "Manual de
// integração do contribuinte", Pág. 71-72.

// pesosDV é o ciclo de pesos aplicado da direita para a esquerda sobre os 43
// dígitos da chave.
var pesosDV = [...]int{2, 3, 4, 5, 6, 7, 8, 9}

// CalcularDV calcula o dígito verificador (módulo 11) da chave de acesso.
// A chave precisa ter exatamente 43 dígitos; qualquer outra coisa interrompe
// a geração do documento.
func CalcularDV(chave string) (byte, error) {
	if len(chave) != 43 {
		return 0, fmt.Errorf("nfe: chave precisa de 43 dígitos antes do DV, tem %d", len(chave))
	}

	soma := 0
	// percorre da direita para a esquerda, ciclando os pesos
	for i := 0; i < len(chave); i++ {
		c := chave[len(chave)-1-i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("nfe: chave contém caractere não numérico %q", c)
		}
		soma += int(c-'0') * pesosDV[i%len(pesosDV)]
	}

	resto := soma % 11
	if resto == 0 || resto == 1 {
		return '0', nil
	}
	return byte('0' + 11 - resto), nil
}

// MontarChave concatena os campos da chave de acesso em larguras fixas, na
// ordem cUF + AAMM + CNPJ + mod + serie + nNF + cNF, e anexa o dígito
// verificador. O resultado tem sempre 44 dígitos.
func MontarChave(cUF string, emissao time.Time, cnpj string, modelo, serie, numero, cnf int) (string, error) {
	if len(cUF) != 2 {
		return "", fmt.Errorf("nfe: código da UF precisa de 2 dígitos, tem %q", cUF)
	}
	if len(cnpj) != 14 {
		return "", fmt.Errorf("nfe: CNPJ precisa de 14 dígitos, tem %d", len(cnpj))
	}

	chave := cUF +
		emissao.Format("0601") +
		cnpj +
		fmt.Sprintf("%02d", modelo) +
		fmt.Sprintf("%03d", serie) +
		fmt.Sprintf("%09d", numero) +
		fmt.Sprintf("%09d", cnf)

	dv, err := CalcularDV(chave)
	if err != nil {
		return "", err
	}
	return chave + string(dv), nil
}
