package stub

import "context"

type contextKey struct{}

var operadorKey contextKey

func contextWithOperador(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, operadorKey, email)
}

// operadorFrom devolve o e-mail do operador autenticado, ou "sistema" fora de
// uma requisição autenticada.
func operadorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(operadorKey).(string); ok && v != "" {
		return v
	}
	return "sistema"
}
