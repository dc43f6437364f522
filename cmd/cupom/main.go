// cupom emite cupons fiscais em uma impressora Bematech MP-25 (ou em um
// driver simulado) a partir de um cupom descrito em YAML.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fiscalbr/internal/config"
	"fiscalbr/internal/storage"
	"fiscalbr/pkg/cupom"
	"fiscalbr/pkg/mp25"
)

var (
	porta    string
	baudRate int
	perfilID string
	simular  bool
	verboso  bool
)

func main() {
	raiz := &cobra.Command{
		Use:   "cupom",
		Short: "Opera uma impressora fiscal Bematech MP-25",
	}
	raiz.PersistentFlags().StringVar(&porta, "porta", "", "porta serial (padrão CUPOM_PORTA)")
	raiz.PersistentFlags().IntVar(&baudRate, "baud", 0, "baud rate (padrão CUPOM_BAUD)")
	raiz.PersistentFlags().StringVar(&perfilID, "perfil", "", "usa um perfil de conexão gravado")
	raiz.PersistentFlags().BoolVar(&simular, "simular", false, "usa o driver simulado em vez da serial")
	raiz.PersistentFlags().BoolVarP(&verboso, "verboso", "v", false, "registra o tráfego serial")

	emitir := &cobra.Command{
		Use:   "emitir <cupom.yaml>",
		Short: "Emite um cupom fiscal completo",
		Args:  cobra.ExactArgs(1),
		RunE:  executarEmitir,
	}

	leituraX := &cobra.Command{
		Use:   "leitura-x",
		Short: "Imprime o relatório de leitura X",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return comImpressora(func(imp *cupom.Impressora) error {
				return imp.LeituraX()
			})
		},
	}

	reducaoZ := &cobra.Command{
		Use:   "reducao-z",
		Short: "Imprime a redução Z e encerra o movimento do dia",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return comImpressora(func(imp *cupom.Impressora) error {
				return imp.ReducaoZ()
			})
		},
	}

	suprimento := &cobra.Command{
		Use:   "suprimento <valor>",
		Short: "Registra entrada de dinheiro no caixa",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valor, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("valor inválido %q", args[0])
			}
			return comImpressora(func(imp *cupom.Impressora) error {
				return imp.Suprimento(valor)
			})
		},
	}

	sangria := &cobra.Command{
		Use:   "sangria <valor>",
		Short: "Registra retirada de dinheiro do caixa",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valor, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("valor inválido %q", args[0])
			}
			return comImpressora(func(imp *cupom.Impressora) error {
				return imp.Sangria(valor)
			})
		},
	}

	perfis := &cobra.Command{
		Use:   "perfis",
		Short: "Lista os perfis de conexão gravados",
		Args:  cobra.NoArgs,
		RunE:  executarPerfis,
	}

	raiz.AddCommand(emitir, leituraX, reducaoZ, suprimento, sangria, perfis)
	if err := raiz.Execute(); err != nil {
		os.Exit(1)
	}
}

// comImpressora resolve o driver (serial ou simulado), abre a conexão, roda
// a operação e grava o perfil de conexão usado.
func comImpressora(operacao func(*cupom.Impressora) error) error {
	cfg := config.Load()

	if simular {
		driver := cupom.NovoSimulado()
		driver.Logf = log.Printf
		return operacao(cupom.NovaImpressora(driver))
	}

	perfis := storage.NovoPerfis(cfg.PerfisArquivo)
	if err := perfis.Carregar(); err != nil {
		log.Printf("Aviso: %v", err)
	}

	portaSerial := porta
	baud := baudRate
	if perfilID != "" {
		perfil, ok := perfis.Buscar(perfilID)
		if !ok {
			return fmt.Errorf("perfil %s não encontrado", perfilID)
		}
		portaSerial = perfil.Porta
		baud = perfil.BaudRate
	}
	if portaSerial == "" {
		portaSerial = cfg.CupomPorta
	}
	if baud == 0 {
		baud = cfg.CupomBaudRate
	}

	driverCfg := mp25.Config{Porta: portaSerial, BaudRate: baud}
	if verboso {
		driverCfg.Logger = log.Printf
	}
	driver := mp25.Novo(driverCfg)
	if err := driver.Conectar(); err != nil {
		return err
	}
	defer driver.Desconectar()

	if err := perfis.Gravar(&storage.Perfil{
		Nome:     portaSerial,
		Porta:    portaSerial,
		BaudRate: baud,
		Modelo:   "MP-25 FI",
	}); err != nil {
		log.Printf("Aviso: perfil não gravado: %v", err)
	}

	return operacao(cupom.NovaImpressora(driver))
}

func executarEmitir(cmd *cobra.Command, args []string) error {
	pedido, err := carregarCupom(args[0])
	if err != nil {
		return err
	}
	return comImpressora(func(imp *cupom.Impressora) error {
		return emitirCupom(imp, pedido)
	})
}

func emitirCupom(imp *cupom.Impressora, pedido *cupomYAML) error {
	if c := pedido.Cliente; c != nil {
		imp.IdentificarCliente(c.Nome, c.Endereco, c.Documento)
	}
	if err := imp.Abrir(); err != nil {
		return err
	}

	for i, item := range pedido.Itens {
		convertido, err := itemDe(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		id, err := imp.AdicionarItem(convertido)
		if err != nil {
			// o cupom já está aberto no equipamento; sem o item não há o
			// que fechar
			imp.Cancelar()
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		fmt.Printf("item %04d: %s\n", id, item.Descricao)
	}

	desconto, err := decimalDe(pedido.Desconto)
	if err != nil {
		return fmt.Errorf("desconto: %w", err)
	}
	acrescimo, err := decimalDe(pedido.Acrescimo)
	if err != nil {
		return fmt.Errorf("acréscimo: %w", err)
	}
	total, err := imp.Totalizar(desconto, acrescimo, cupom.ImpostoIsento)
	if err != nil {
		imp.Cancelar()
		return err
	}
	fmt.Printf("total: %s\n", total)

	for i, pagamento := range pedido.Pagamentos {
		valor, err := decimalDe(pagamento.Valor)
		if err != nil {
			return fmt.Errorf("pagamento %d: %w", i+1, err)
		}
		restante, err := imp.AdicionarPagamento(formaDe(pagamento.Forma), valor, pagamento.Descricao)
		if err != nil {
			imp.Cancelar()
			return fmt.Errorf("pagamento %d: %w", i+1, err)
		}
		fmt.Printf("pagamento %s, restante %s\n", valor, restante)
	}

	numero, err := imp.Fechar(pedido.Mensagem)
	if err != nil {
		imp.Cancelar()
		return err
	}
	fmt.Printf("cupom %06d emitido\n", numero)
	return nil
}

func executarPerfis(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	perfis := storage.NovoPerfis(cfg.PerfisArquivo)
	if err := perfis.Carregar(); err != nil {
		return err
	}

	lista := perfis.Listar()
	if len(lista) == 0 {
		fmt.Println("nenhum perfil gravado")
		return nil
	}
	for _, perfil := range lista {
		fmt.Printf("%s  %-12s %6d baud  %-10s último uso %s\n",
			perfil.ID, perfil.Porta, perfil.BaudRate, perfil.Modelo,
			perfil.UltimoUso.Format("02/01/2006 15:04"))
	}
	return nil
}

// Estruturas do arquivo YAML de entrada.

type cupomYAML struct {
	Cliente    *clienteYAML    `yaml:"cliente"`
	Itens      []itemYAML      `yaml:"itens"`
	Desconto   string          `yaml:"desconto"`
	Acrescimo  string          `yaml:"acrescimo"`
	Pagamentos []pagamentoYAML `yaml:"pagamentos"`
	Mensagem   string          `yaml:"mensagem"`
}

type clienteYAML struct {
	Nome      string `yaml:"nome"`
	Endereco  string `yaml:"endereco"`
	Documento string `yaml:"documento"`
}

type itemYAML struct {
	Codigo     string `yaml:"codigo"`
	Descricao  string `yaml:"descricao"`
	Quantidade string `yaml:"quantidade"`
	Preco      string `yaml:"preco"`
	Unidade    string `yaml:"unidade"`
	Desconto   string `yaml:"desconto"`
	Acrescimo  string `yaml:"acrescimo"`
}

type pagamentoYAML struct {
	Forma     string `yaml:"forma"`
	Valor     string `yaml:"valor"`
	Descricao string `yaml:"descricao"`
}

func carregarCupom(caminho string) (*cupomYAML, error) {
	dados, err := os.ReadFile(caminho)
	if err != nil {
		return nil, err
	}
	var c cupomYAML
	if err := yaml.Unmarshal(dados, &c); err != nil {
		return nil, fmt.Errorf("erro ao interpretar %s: %w", caminho, err)
	}
	if len(c.Itens) == 0 {
		return nil, fmt.Errorf("%s: cupom sem itens", caminho)
	}
	if len(c.Pagamentos) == 0 {
		return nil, fmt.Errorf("%s: cupom sem pagamentos", caminho)
	}
	return &c, nil
}

func itemDe(item itemYAML) (cupom.Item, error) {
	quantidade, err := decimalDe(item.Quantidade)
	if err != nil {
		return cupom.Item{}, fmt.Errorf("quantidade: %w", err)
	}
	preco, err := decimalDe(item.Preco)
	if err != nil {
		return cupom.Item{}, fmt.Errorf("preço: %w", err)
	}
	desconto, err := decimalDe(item.Desconto)
	if err != nil {
		return cupom.Item{}, fmt.Errorf("desconto: %w", err)
	}
	acrescimo, err := decimalDe(item.Acrescimo)
	if err != nil {
		return cupom.Item{}, fmt.Errorf("acréscimo: %w", err)
	}

	unidade, descricaoUnidade := unidadeDe(item.Unidade)
	return cupom.Item{
		Codigo:           item.Codigo,
		Descricao:        item.Descricao,
		Quantidade:       quantidade,
		PrecoUnitario:    preco,
		Unidade:          unidade,
		UnidadeDescricao: descricaoUnidade,
		Imposto:          cupom.ImpostoIsento,
		Desconto:         desconto,
		Acrescimo:        acrescimo,
	}, nil
}

func unidadeDe(nome string) (cupom.Unidade, string) {
	switch nome {
	case "":
		return cupom.UnidadeVazia, ""
	case "kg":
		return cupom.UnidadePeso, ""
	case "m":
		return cupom.UnidadeMetros, ""
	case "l", "lt":
		return cupom.UnidadeLitros, ""
	}
	return cupom.UnidadePersonalizada, nome
}

func formaDe(nome string) cupom.MetodoPagamento {
	if nome == "cheque" {
		return cupom.PagamentoCheque
	}
	return cupom.PagamentoDinheiro
}

func decimalDe(texto string) (decimal.Decimal, error) {
	if texto == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(texto)
}
