// Package validation valida documentos XML de NF-e contra o esquema XSD
// oficial da SEFAZ.
package validation

import (
	"fmt"

	xsdvalidate "github.com/terminalstatic/go-xsd-validate"
)

// Validador mantém o esquema compilado em memória para validar vários
// documentos. Fechar libera os recursos do libxml2.
type Validador struct {
	handler *xsdvalidate.XsdHandler
}

// NovoValidador compila o esquema XSD do caminho informado.
func NovoValidador(caminhoXSD string) (*Validador, error) {
	if err := xsdvalidate.Init(); err != nil {
		return nil, fmt.Errorf("validation: erro ao inicializar libxml2: %w", err)
	}
	handler, err := xsdvalidate.NewXsdHandlerUrl(caminhoXSD, xsdvalidate.ParsErrDefault)
	if err != nil {
		xsdvalidate.Cleanup()
		return nil, fmt.Errorf("validation: erro ao compilar esquema %s: %w", caminhoXSD, err)
	}
	return &Validador{handler: handler}, nil
}

// Validar confere o documento contra o esquema compilado.
func (v *Validador) Validar(documento []byte) error {
	if err := v.handler.ValidateMem(documento, xsdvalidate.ValidErrDefault); err != nil {
		return fmt.Errorf("validation: documento inválido: %w", err)
	}
	return nil
}

// Fechar libera o esquema e o libxml2.
func (v *Validador) Fechar() {
	v.handler.Free()
	xsdvalidate.Cleanup()
}
