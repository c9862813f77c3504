package prontuario

import (
	"errors"
	"strings"
)

// StatusTratamento descreve a relação do paciente com o tratamento ativo.
// Os quatro estados são mutuamente alcançáveis e reentrantes: não há matriz
// de transições proibidas, e repetir o status atual é permitido.
type StatusTratamento string

const (
	EmTratamento        StatusTratamento = "EM_TRATAMENTO"
	AltaMedica          StatusTratamento = "ALTA_MEDICA"
	AbandonouTratamento StatusTratamento = "ABANDONOU_TRATAMENTO"
	Transferido         StatusTratamento = "TRANSFERIDO"
)

// MotivoAltaMinimo é o tamanho mínimo do motivo exigido na alta médica.
const MotivoAltaMinimo = 10

var (
	ErrStatusInvalido        = errors.New("status de tratamento inválido")
	ErrMotivoAltaObrigatorio = errors.New("o motivo da alta é obrigatório e deve ter pelo menos 10 caracteres")
)

func (s StatusTratamento) Valido() bool {
	switch s {
	case EmTratamento, AltaMedica, AbandonouTratamento, Transferido:
		return true
	}
	return false
}

// Label retorna o rótulo de exibição em pt-BR.
func (s StatusTratamento) Label() string {
	switch s {
	case EmTratamento:
		return "Em Tratamento"
	case AltaMedica:
		return "Alta Médica"
	case AbandonouTratamento:
		return "Abandonou Tratamento"
	case Transferido:
		return "Transferido"
	}
	return string(s)
}

// Transicao é uma mudança de status pretendida. MotivoAlta só é exigido
// quando o destino é ALTA_MEDICA.
type Transicao struct {
	Status     StatusTratamento
	MotivoAlta string
}

// TransicaoPayload é o corpo enviado ao endpoint de transição. MotivoAlta é
// omitido por completo fora da alta médica; nunca vai como string vazia.
type TransicaoPayload struct {
	Status     StatusTratamento `json:"status"`
	MotivoAlta string           `json:"motivoAlta,omitempty"`
}

// Validate aplica a regra condicional da transição: destino ALTA_MEDICA exige
// motivo com pelo menos MotivoAltaMinimo caracteres. Nenhuma chamada de rede
// deve acontecer se isto falhar.
func (t Transicao) Validate() error {
	if !t.Status.Valido() {
		return ErrStatusInvalido
	}
	if t.Status == AltaMedica && len(strings.TrimSpace(t.MotivoAlta)) < MotivoAltaMinimo {
		return ErrMotivoAltaObrigatorio
	}
	return nil
}

// Payload valida a transição e monta o corpo da requisição. Para destinos
// diferentes de ALTA_MEDICA o motivo é descartado mesmo quando preenchido.
func (t Transicao) Payload() (TransicaoPayload, error) {
	if err := t.Validate(); err != nil {
		return TransicaoPayload{}, err
	}
	p := TransicaoPayload{Status: t.Status}
	if t.Status == AltaMedica {
		p.MotivoAlta = t.MotivoAlta
	}
	return p, nil
}
