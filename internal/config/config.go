// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig controla o servidor HTTP.
type ServerConfig struct {
	Port    string `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

// FonteConfig aponta para a planilha de controle. A URL remota tem
// precedência; o caminho local e o diretório de dados são fallbacks.
type FonteConfig struct {
	URLExcel        string `toml:"url_excel"`
	CaminhoExcel    string `toml:"caminho_excel"`
	Aba             string `toml:"aba"`
	DiretorioDados  string `toml:"diretorio_dados"`
	TimeoutSegundos int    `toml:"timeout_segundos"`
}

// CacheConfig controla a validade da tabela em memória.
type CacheConfig struct {
	TTLMinutos int `toml:"ttl_minutos"`
}

// AuthConfig define quem pode disparar a atualização manual dos dados.
// Com Firestore configurado os usuários vêm da coleção "users"; caso
// contrário vale o administrador único definido aqui.
type AuthConfig struct {
	JWTSecret           string `toml:"jwt_secret"`
	AdminUsuario        string `toml:"admin_usuario"`
	AdminSenhaHash      string `toml:"admin_senha_hash"`
	CredenciaisFirebase string `toml:"credenciais_firebase"`
	ProjetoFirestore    string `toml:"projeto_firestore"`
	BancoFirestore      string `toml:"banco_firestore"`
}

// Config agrupa toda a configuração da aplicação.
type Config struct {
	Server ServerConfig `toml:"server"`
	Fonte  FonteConfig  `toml:"fonte"`
	Cache  CacheConfig  `toml:"cache"`
	Auth   AuthConfig   `toml:"auth"`
}

// DefaultConfig devolve a configuração padrão do painel.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Fonte: FonteConfig{
			CaminhoExcel:    "CONTROLE DE PROCESSOS SECOM.xlsx",
			Aba:             "CONTROLE DE PROCESSOS - GERAL",
			DiretorioDados:  ".",
			TimeoutSegundos: 30,
		},
		Cache: CacheConfig{
			TTLMinutos: 5,
		},
	}
}

// Load carrega a configuração: padrões, depois o config.toml (se
// existir) e por fim as variáveis de ambiente, que têm a palavra final.
func Load(caminho string) (*Config, error) {
	cfg := DefaultConfig()

	if caminho == "" {
		caminho = "config.toml"
	}
	conteudo, err := os.ReadFile(caminho)
	if err == nil {
		if err := toml.Unmarshal(conteudo, cfg); err != nil {
			return nil, fmt.Errorf("config.toml inválido: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("erro ao ler %s: %w", caminho, err)
	}

	aplicarAmbiente(cfg)
	return cfg, nil
}

// aplicarAmbiente sobrepõe a configuração com as variáveis de
// ambiente, que têm precedência sobre o arquivo.
func aplicarAmbiente(cfg *Config) {
	setSeDefinida := func(destino *string, nome string) {
		if v := os.Getenv(nome); v != "" {
			*destino = v
		}
	}

	setSeDefinida(&cfg.Server.Port, "PORT")
	setSeDefinida(&cfg.Server.GinMode, "GIN_MODE")
	setSeDefinida(&cfg.Fonte.URLExcel, "EXCEL_URL")
	setSeDefinida(&cfg.Fonte.CaminhoExcel, "EXCEL_PATH")
	setSeDefinida(&cfg.Fonte.Aba, "SHEET_NAME")
	setSeDefinida(&cfg.Fonte.DiretorioDados, "DATA_DIR")
	setSeDefinida(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setSeDefinida(&cfg.Auth.AdminUsuario, "ADMIN_USER")
	setSeDefinida(&cfg.Auth.AdminSenhaHash, "ADMIN_PASSWORD_HASH")
	setSeDefinida(&cfg.Auth.CredenciaisFirebase, "FIREBASE_CREDENTIALS_FILE")
	setSeDefinida(&cfg.Auth.ProjetoFirestore, "FIRESTORE_PROJECT_ID")
	setSeDefinida(&cfg.Auth.BancoFirestore, "FIRESTORE_DATABASE_ID")

	if v := os.Getenv("CACHE_TTL_MINUTOS"); v != "" {
		if minutos, err := strconv.Atoi(v); err == nil && minutos > 0 {
			cfg.Cache.TTLMinutos = minutos
		}
	}
	if v := os.Getenv("EXCEL_TIMEOUT_SEGUNDOS"); v != "" {
		if segundos, err := strconv.Atoi(v); err == nil && segundos > 0 {
			cfg.Fonte.TimeoutSegundos = segundos
		}
	}
}
