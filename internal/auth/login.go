package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/prontuario/console/internal/transport"
)

var ErrSemToken = errors.New("resposta de login sem token")

type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Login autentica contra POST /admin/login e persiste o token retornado.
func Login(ctx context.Context, tr *transport.Client, store *TokenStore, email, senha string) error {
	var resp LoginResponse
	if err := tr.DoJSON(ctx, http.MethodPost, "/admin/login", nil, LoginRequest{Email: email, Senha: senha}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return ErrSemToken
	}
	return store.Save(resp.Token)
}
