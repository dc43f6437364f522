package nfe

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// Resumo reúne os principais dados extraídos de um XML de NF-e já emitido.
type Resumo struct {
	Chave        string
	Modelo       string
	Serie        string
	Numero       string
	Emitente     ParteResumo
	Destinatario ParteResumo
	ValorTotal   string
}

// ParteResumo identifica emitente ou destinatário no resumo.
type ParteResumo struct {
	Documento string
	Nome      string
}

// estruturas internas de parse do XML
type xmlNFe struct {
	XMLName xml.Name  `xml:"NFe"`
	InfNFe  xmlInfNFe `xml:"infNFe"`
}

type xmlInfNFe struct {
	ID   string `xml:"Id,attr"`
	Ide  xmlIde `xml:"ide"`
	Emit struct {
		CNPJ  string `xml:"CNPJ"`
		CPF   string `xml:"CPF"`
		XNome string `xml:"xNome"`
	} `xml:"emit"`
	Dest struct {
		CNPJ  string `xml:"CNPJ"`
		CPF   string `xml:"CPF"`
		XNome string `xml:"xNome"`
	} `xml:"dest"`
	Total struct {
		ICMSTot struct {
			VNF string `xml:"vNF"`
		} `xml:"ICMSTot"`
	} `xml:"total"`
}

type xmlIde struct {
	Modelo string `xml:"mod"`
	Serie  string `xml:"serie"`
	Numero string `xml:"nNF"`
}

// Ler extrai o resumo de um XML de NF-e. Aceita documentos em UTF-8 e nas
// codificações declaradas no prólogo (alguns emissores antigos gravam em
// ISO-8859-1).
func Ler(r io.Reader) (*Resumo, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var doc xmlNFe
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("nfe: erro ao interpretar XML: %w", err)
	}

	chave := strings.TrimPrefix(doc.InfNFe.ID, "NFe")
	if len(chave) != 44 {
		return nil, fmt.Errorf("nfe: Id %q não contém uma chave de 44 dígitos", doc.InfNFe.ID)
	}

	return &Resumo{
		Chave:  chave,
		Modelo: doc.InfNFe.Ide.Modelo,
		Serie:  doc.InfNFe.Ide.Serie,
		Numero: doc.InfNFe.Ide.Numero,
		Emitente: ParteResumo{
			Documento: escolherDocumento(doc.InfNFe.Emit.CNPJ, doc.InfNFe.Emit.CPF),
			Nome:      doc.InfNFe.Emit.XNome,
		},
		Destinatario: ParteResumo{
			Documento: escolherDocumento(doc.InfNFe.Dest.CNPJ, doc.InfNFe.Dest.CPF),
			Nome:      doc.InfNFe.Dest.XNome,
		},
		ValorTotal: doc.InfNFe.Total.ICMSTot.VNF,
	}, nil
}

// LerArquivo lê e resume o XML do caminho informado.
func LerArquivo(caminho string) (*Resumo, error) {
	f, err := os.Open(caminho)
	if err != nil {
		return nil, fmt.Errorf("nfe: erro ao abrir XML: %w", err)
	}
	defer f.Close()
	return Ler(f)
}

// ValidarChave confere o dígito verificador de uma chave de acesso completa
// (44 dígitos).
func ValidarChave(chave string) error {
	chave = strings.TrimPrefix(chave, "NFe")
	if len(chave) != 44 {
		return fmt.Errorf("nfe: chave precisa de 44 dígitos, tem %d", len(chave))
	}
	dv, err := CalcularDV(chave[:43])
	if err != nil {
		return err
	}
	if chave[43] != dv {
		return fmt.Errorf("nfe: dígito verificador inválido: esperado %c, chave traz %c", dv, chave[43])
	}
	return nil
}

func escolherDocumento(cnpj, cpf string) string {
	if cnpj != "" {
		return cnpj
	}
	return cpf
}
