// Package auth cuida da credencial do operador: persistência do token em
// arquivo (o análogo do cookie do navegador) e o login contra a API.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persiste o token JWT em um arquivo com permissão restrita.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Save grava o token. Cria o diretório se necessário.
func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load lê o token persistido; retorna "" se não existir.
func (s *TokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Clear remove a credencial (logout ou sessão expirada).
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Token implementa transport.TokenSource. Um token com exp vencido é tratado
// como ausente: a assinatura não é conferida aqui (o cliente não tem o
// segredo), só a validade temporal declarada.
func (s *TokenStore) Token() string {
	tok, err := s.Load()
	if err != nil || tok == "" {
		return ""
	}
	if expirado(tok) {
		return ""
	}
	return tok
}

func expirado(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Token ilegível não é motivo para esconder: o servidor decide.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
