// emissor gera, valida e confere documentos de NF-e a partir de vendas
// descritas em YAML.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fiscalbr/internal/config"
	"fiscalbr/internal/validation"
	"fiscalbr/pkg/nfe"
)

var (
	saidaDir   string
	exportaTxt bool
	pularXSD   bool
)

func main() {
	raiz := &cobra.Command{
		Use:   "emissor",
		Short: "Gera e confere documentos de NF-e (modelo 55, leiaute 1.10)",
	}

	gerar := &cobra.Command{
		Use:   "gerar <venda.yaml>",
		Short: "Gera o XML e o dump em texto da NF-e de uma venda",
		Args:  cobra.ExactArgs(1),
		RunE:  executarGerar,
	}
	gerar.Flags().StringVarP(&saidaDir, "saida", "o", "", "diretório de saída (padrão NFE_SAIDA_DIR)")
	gerar.Flags().BoolVar(&exportaTxt, "txt", false, "exporta também o dump em texto")
	gerar.Flags().BoolVar(&pularXSD, "sem-xsd", false, "não valida contra o esquema XSD")

	validar := &cobra.Command{
		Use:   "validar <arquivo.xml>",
		Short: "Valida um XML de NF-e contra o esquema XSD da SEFAZ",
		Args:  cobra.ExactArgs(1),
		RunE:  executarValidar,
	}

	conferir := &cobra.Command{
		Use:   "conferir <arquivo.xml>",
		Short: "Resume um XML de NF-e e confere o dígito da chave",
		Args:  cobra.ExactArgs(1),
		RunE:  executarConferir,
	}

	chave := &cobra.Command{
		Use:   "chave <chave de acesso>",
		Short: "Confere o dígito verificador de uma chave de acesso",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nfe.ValidarChave(args[0]); err != nil {
				return err
			}
			fmt.Println("chave válida")
			return nil
		},
	}

	raiz.AddCommand(gerar, validar, conferir, chave)
	if err := raiz.Execute(); err != nil {
		os.Exit(1)
	}
}

func executarGerar(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	venda, err := carregarVenda(args[0])
	if err != nil {
		return err
	}

	gerador := nfe.NovoGerador(venda, nfe.Config{
		Serie:          cfg.Serie,
		Orientacao:     nfe.OrientacaoRetrato,
		Ambiente:       ambienteDe(cfg.Ambiente),
		VersaoProcesso: cfg.VersaoProcesso,
	})
	if err := gerador.Gerar(); err != nil {
		return err
	}

	if !pularXSD && cfg.SchemaNFe != "" {
		validador, err := validation.NovoValidador(cfg.SchemaNFe)
		if err != nil {
			return err
		}
		defer validador.Fechar()
		if err := validador.Validar(gerador.XML()); err != nil {
			return err
		}
	}

	dir := saidaDir
	if dir == "" {
		dir = cfg.SaidaDir
	}
	caminho, err := gerador.Salvar(dir)
	if err != nil {
		return err
	}
	fmt.Printf("chave:   %s\n", gerador.Chave())
	fmt.Printf("xml:     %s\n", caminho)

	if exportaTxt {
		caminhoTxt, err := gerador.ExportarTxt(dir)
		if err != nil {
			return err
		}
		fmt.Printf("txt:     %s\n", caminhoTxt)
	}
	return nil
}

func executarValidar(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.SchemaNFe == "" {
		return fmt.Errorf("defina NFE_SCHEMA_XSD com o caminho do esquema")
	}

	documento, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	validador, err := validation.NovoValidador(cfg.SchemaNFe)
	if err != nil {
		return err
	}
	defer validador.Fechar()

	if err := validador.Validar(documento); err != nil {
		return err
	}
	fmt.Println("documento válido")
	return nil
}

func executarConferir(cmd *cobra.Command, args []string) error {
	resumo, err := nfe.LerArquivo(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("chave:        %s\n", resumo.Chave)
	fmt.Printf("modelo/série: %s/%s\n", resumo.Modelo, resumo.Serie)
	fmt.Printf("número:       %s\n", resumo.Numero)
	fmt.Printf("emitente:     %s (%s)\n", resumo.Emitente.Nome, resumo.Emitente.Documento)
	fmt.Printf("destinatário: %s (%s)\n", resumo.Destinatario.Nome, resumo.Destinatario.Documento)
	fmt.Printf("valor total:  %s\n", resumo.ValorTotal)

	if err := nfe.ValidarChave(resumo.Chave); err != nil {
		return err
	}
	fmt.Println("dígito verificador confere")
	return nil
}

// Estruturas do arquivo YAML de entrada.

type vendaYAML struct {
	Numero         int             `yaml:"numero"`
	Natureza       string          `yaml:"natureza"`
	CFOP           string          `yaml:"cfop"`
	Emissao        string          `yaml:"emissao"`
	Desconto       string          `yaml:"desconto"`
	Observacoes    string          `yaml:"observacoes"`
	Emitente       pessoaYAML      `yaml:"emitente"`
	Destinatario   pessoaYAML      `yaml:"destinatario"`
	Transportadora *pessoaYAML     `yaml:"transportadora"`
	Itens          []itemYAML      `yaml:"itens"`
	Pagamentos     []pagamentoYAML `yaml:"pagamentos"`
}

type pessoaYAML struct {
	Nome     string       `yaml:"nome"`
	CNPJ     string       `yaml:"cnpj"`
	CPF      string       `yaml:"cpf"`
	IE       string       `yaml:"ie"`
	Endereco enderecoYAML `yaml:"endereco"`
}

type enderecoYAML struct {
	Logradouro  string `yaml:"logradouro"`
	Numero      string `yaml:"numero"`
	Complemento string `yaml:"complemento"`
	Bairro      string `yaml:"bairro"`
	Municipio   string `yaml:"municipio"`
	UF          string `yaml:"uf"`
	CEP         string `yaml:"cep"`
	Telefone    string `yaml:"telefone"`
}

type itemYAML struct {
	Codigo       string `yaml:"codigo"`
	Descricao    string `yaml:"descricao"`
	CodigoBarras string `yaml:"codigo_barras"`
	NCM          string `yaml:"ncm"`
	Unidade      string `yaml:"unidade"`
	Quantidade   string `yaml:"quantidade"`
	Preco        string `yaml:"preco"`
	Peso         string `yaml:"peso"`
	Regime       string `yaml:"regime"`
}

type pagamentoYAML struct {
	Numero     string `yaml:"numero"`
	Vencimento string `yaml:"vencimento"`
	Valor      string `yaml:"valor"`
}

func carregarVenda(caminho string) (*nfe.Venda, error) {
	dados, err := os.ReadFile(caminho)
	if err != nil {
		return nil, err
	}
	var v vendaYAML
	if err := yaml.Unmarshal(dados, &v); err != nil {
		return nil, fmt.Errorf("erro ao interpretar %s: %w", caminho, err)
	}

	emissao, err := dataDe(v.Emissao)
	if err != nil {
		return nil, fmt.Errorf("emissão: %w", err)
	}
	emitente, err := pessoaDe(v.Emitente)
	if err != nil {
		return nil, fmt.Errorf("emitente: %w", err)
	}
	destinatario, err := pessoaDe(v.Destinatario)
	if err != nil {
		return nil, fmt.Errorf("destinatário: %w", err)
	}
	desconto, err := decimalDe(v.Desconto)
	if err != nil {
		return nil, fmt.Errorf("desconto: %w", err)
	}

	venda := &nfe.Venda{
		NumeroNota:   v.Numero,
		Natureza:     v.Natureza,
		CFOP:         v.CFOP,
		Emissao:      emissao,
		Emitente:     emitente,
		Destinatario: destinatario,
		Desconto:     desconto,
		Observacoes:  v.Observacoes,
	}
	if v.Transportadora != nil {
		transportadora, err := pessoaDe(*v.Transportadora)
		if err != nil {
			return nil, fmt.Errorf("transportadora: %w", err)
		}
		venda.Transportadora = &transportadora
	}

	for i, item := range v.Itens {
		regime, err := regimeDe(item.Regime)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		quantidade, err := decimalDe(item.Quantidade)
		if err != nil {
			return nil, fmt.Errorf("item %d: quantidade: %w", i+1, err)
		}
		preco, err := decimalDe(item.Preco)
		if err != nil {
			return nil, fmt.Errorf("item %d: preço: %w", i+1, err)
		}
		peso, err := decimalDe(item.Peso)
		if err != nil {
			return nil, fmt.Errorf("item %d: peso: %w", i+1, err)
		}
		venda.Itens = append(venda.Itens, nfe.ItemVenda{
			Codigo:        item.Codigo,
			Descricao:     item.Descricao,
			CodigoBarras:  item.CodigoBarras,
			NCM:           item.NCM,
			Unidade:       item.Unidade,
			Quantidade:    quantidade,
			PrecoUnitario: preco,
			PesoUnitario:  peso,
			Regime:        regime,
		})
	}
	for i, pagamento := range v.Pagamentos {
		vencimento, err := dataDe(pagamento.Vencimento)
		if err != nil {
			return nil, fmt.Errorf("pagamento %d: %w", i+1, err)
		}
		valor, err := decimalDe(pagamento.Valor)
		if err != nil {
			return nil, fmt.Errorf("pagamento %d: valor: %w", i+1, err)
		}
		venda.Pagamentos = append(venda.Pagamentos, nfe.Pagamento{
			Numero:     pagamento.Numero,
			Vencimento: vencimento,
			Valor:      valor,
		})
	}
	return venda, nil
}

func pessoaDe(p pessoaYAML) (nfe.Pessoa, error) {
	documento := nfe.Documento{}
	switch {
	case p.CNPJ != "":
		documento = nfe.Documento{Tipo: nfe.DocCNPJ, Numero: p.CNPJ}
	case p.CPF != "":
		documento = nfe.Documento{Tipo: nfe.DocCPF, Numero: p.CPF}
	default:
		return nfe.Pessoa{}, fmt.Errorf("%q sem cnpj nem cpf", p.Nome)
	}
	return nfe.Pessoa{
		Nome:              p.Nome,
		Documento:         documento,
		InscricaoEstadual: p.IE,
		Endereco: nfe.Endereco{
			Logradouro:  p.Endereco.Logradouro,
			Numero:      p.Endereco.Numero,
			Complemento: p.Endereco.Complemento,
			Bairro:      p.Endereco.Bairro,
			Municipio:   p.Endereco.Municipio,
			UF:          p.Endereco.UF,
			CEP:         p.Endereco.CEP,
			Telefone:    p.Endereco.Telefone,
		},
	}, nil
}

func regimeDe(nome string) (nfe.RegimeTributario, error) {
	switch nome {
	case "", "isento":
		return nfe.RegimeIsento, nil
	case "nao-tributado":
		return nfe.RegimeNaoTributado, nil
	case "icms":
		return nfe.RegimeICMSIntegral, nil
	case "substituicao":
		return nfe.RegimeSubstituicao, nil
	}
	return 0, fmt.Errorf("regime desconhecido %q", nome)
}

func ambienteDe(nome string) nfe.Ambiente {
	if nome == "producao" {
		return nfe.AmbienteProducao
	}
	return nfe.AmbienteHomologacao
}

func dataDe(texto string) (time.Time, error) {
	if texto == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", texto)
}

func decimalDe(texto string) (decimal.Decimal, error) {
	if texto == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(texto)
}
