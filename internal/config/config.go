// Package config carrega a configuração da aplicação a partir de arquivos
// .env por ambiente e das variáveis de ambiente do sistema.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string

	// Emissão da NF-e
	Serie          int
	Ambiente       string
	VersaoProcesso string
	SaidaDir       string
	SchemaNFe      string

	// Impressora fiscal
	CupomPorta    string
	CupomBaudRate int
	PerfisArquivo string
}

// Load carrega a configuração com base na variável NFE_ENV ou padroniza para
// 'production'.
func Load() *Config {
	env := os.Getenv("NFE_ENV")
	if env == "" {
		env = "production"
	}

	// Carrega o arquivo .env do ambiente (ex: .env.production)
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// A ausência do arquivo não é fatal: seguimos com as variáveis de
		// ambiente do sistema.
		if !strings.Contains(err.Error(), "no such file or directory") {
			log.Fatalf("Erro ao carregar arquivo de ambiente %s: %v", envFile, err)
		} else {
			log.Printf("Aviso: arquivo de ambiente '%s' não encontrado. Usando variáveis de ambiente do sistema.", envFile)
		}
	}

	return &Config{
		Env:            env,
		Serie:          inteiro("NFE_SERIE", 1),
		Ambiente:       valor("NFE_AMBIENTE", "homologacao"),
		VersaoProcesso: valor("NFE_VERSAO_PROCESSO", "fiscalbr"),
		SaidaDir:       valor("NFE_SAIDA_DIR", "."),
		SchemaNFe:      os.Getenv("NFE_SCHEMA_XSD"),
		CupomPorta:     valor("CUPOM_PORTA", "/dev/ttyS0"),
		CupomBaudRate:  inteiro("CUPOM_BAUD", 9600),
		PerfisArquivo:  valor("CUPOM_PERFIS", "perfis.json"),
	}
}

func valor(nome, padrao string) string {
	if v := os.Getenv(nome); v != "" {
		return v
	}
	return padrao
}

func inteiro(nome string, padrao int) int {
	v := os.Getenv(nome)
	if v == "" {
		return padrao
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Aviso: %s=%q não é um inteiro, usando %d.", nome, v, padrao)
		return padrao
	}
	return n
}
