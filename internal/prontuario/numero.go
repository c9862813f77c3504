package prontuario

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var numeroProntuarioRe = regexp.MustCompile(`^PRONT-\d+$`)

// NovoNumeroProntuario gera um número de prontuário no formato PRONT-<dígitos>.
// Além do timestamp em milissegundos, entra um sufixo aleatório de 32 bits
// derivado de um UUID para evitar colisão entre criações no mesmo instante.
func NovoNumeroProntuario() string {
	return fmt.Sprintf("PRONT-%d%010d", time.Now().UnixMilli(), uuid.New().ID())
}

// NumeroProntuarioValido verifica o formato PRONT-<dígitos>.
func NumeroProntuarioValido(n string) bool {
	return numeroProntuarioRe.MatchString(n)
}
