package validation

import (
	"fmt"
	"math/rand"
)

// GerarCPFValido gera um CPF aleatório com dígitos verificadores corretos.
// Usado para preencher o valor inicial do formulário de criação e em testes.
func GerarCPFValido() string {
	for {
		cpf := gerarCPF()
		// Uma base de dígitos todos iguais geraria um CPF que o próprio
		// validador rejeita.
		if ValidarCPF(cpf) {
			return cpf
		}
	}
}

func gerarCPF() string {
	base := fmt.Sprintf("%03d%03d%02d", rand.Intn(1000), rand.Intn(1000), rand.Intn(100))

	soma := 0
	for i := 0; i < 9; i++ {
		soma += int(base[i]-'0') * (10 - i)
	}
	resto := 11 - (soma % 11)
	dv1 := resto
	if resto == 10 || resto == 11 {
		dv1 = 0
	}
	cpf := base + fmt.Sprintf("%d", dv1)

	soma = 0
	for i := 0; i < 10; i++ {
		soma += int(cpf[i]-'0') * (11 - i)
	}
	resto = 11 - (soma % 11)
	dv2 := resto
	if resto == 10 || resto == 11 {
		dv2 = 0
	}
	return cpf + fmt.Sprintf("%d", dv2)
}
