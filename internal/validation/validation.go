// Package validation concentra as regras de formulário do cliente: os schemas
// por etapa (dados do paciente, informações de tratamento), os schemas dos
// sub-registros clínicos e a regra condicional do status de tratamento.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// emailRegex valida formato de e-mail (uma @ e domínio com ponto).
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors mapeia campo -> mensagem. Vazio significa válido.
type FieldErrors map[string]string

// Error junta as mensagens de forma determinística (ordenado por campo).
func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(f[k])
	}
	return b.String()
}

// Ok informa se não há erros.
func (f FieldErrors) Ok() bool { return len(f) == 0 }

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidarCPF aplica o duplo dígito verificador módulo 11. Aceita o valor com
// ou sem máscara; rejeita sequências de dígitos repetidos.
func ValidarCPF(cpf string) bool {
	cpf = onlyDigits(cpf)
	if len(cpf) != 11 {
		return false
	}
	repeated := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}
	soma := 0
	for i := 0; i < 9; i++ {
		soma += int(cpf[i]-'0') * (10 - i)
	}
	resto := (soma * 10) % 11
	if resto == 10 || resto == 11 {
		resto = 0
	}
	if resto != int(cpf[9]-'0') {
		return false
	}
	soma = 0
	for i := 0; i < 10; i++ {
		soma += int(cpf[i]-'0') * (11 - i)
	}
	resto = (soma * 10) % 11
	if resto == 10 || resto == 11 {
		resto = 0
	}
	return resto == int(cpf[10]-'0')
}

// ValidarTelefone exige 10 ou 11 dígitos (fixo ou celular com DDD).
func ValidarTelefone(telefone string) bool {
	d := onlyDigits(telefone)
	return len(d) == 10 || len(d) == 11
}

// ValidarCEP exige 8 dígitos.
func ValidarCEP(cep string) bool {
	return len(onlyDigits(cep)) == 8
}

// ValidarEmail valida o formato com o mesmo regex do backend.
func ValidarEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

func dataValida(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}
