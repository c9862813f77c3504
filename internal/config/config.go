package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL é a base da API do backend, incluindo o prefixo /api.
	APIBaseURL string
	// TokenPath é o arquivo onde o token de autenticação fica persistido.
	TokenPath string
	// RequestTimeout vale para toda requisição HTTP (transporte, não lógica).
	RequestTimeout time.Duration
	LogLevel       string
	// Porta do stub server local (cmd/stubserver).
	StubPort string
	// JWTSecret assina os tokens emitidos pelo stub server.
	JWTSecret string
}

// Load lê a configuração do ambiente. Um arquivo .env no diretório atual é
// carregado antes, se existir (não sobrescreve variáveis já definidas).
func Load() *Config {
	_ = godotenv.Load()

	base := os.Getenv("PRONTUARIO_API_URL")
	if base == "" {
		base = "http://localhost:8080/api"
	}
	tokenPath := os.Getenv("PRONTUARIO_TOKEN_PATH")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		tokenPath = filepath.Join(home, ".prontuario", "token")
	}
	timeout := 30 * time.Second
	if v := os.Getenv("PRONTUARIO_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}
	return &Config{
		APIBaseURL:     base,
		TokenPath:      tokenPath,
		RequestTimeout: timeout,
		LogLevel:       getEnv("PRONTUARIO_LOG_LEVEL", "info"),
		StubPort:       getEnv("PORT", "8080"),
		JWTSecret:      getEnv("PRONTUARIO_JWT_SECRET", "dev-secret"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
