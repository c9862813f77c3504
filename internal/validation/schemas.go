package validation

import (
	"strings"

	"github.com/prontuario/console/internal/prontuario"
)

// EnderecoInput são os campos de endereço da etapa de dados do paciente.
type EnderecoInput struct {
	Logradouro  string
	Numero      string
	Complemento string // opcional
	Bairro      string
	Cidade      string
	Estado      string
	CEP         string
}

// PacienteInput é a representação aninhada da etapa 1 do formulário.
type PacienteInput struct {
	Nome           string
	DataNascimento string
	CPF            string
	Genero         prontuario.Genero
	Telefone       string
	Email          string
	Endereco       EnderecoInput
}

// TratamentoInput é a etapa 2: classificação + histórico inicial.
type TratamentoInput struct {
	TipoTratamento prontuario.TipoTratamento
	Descricao      string
}

type HistoricoInput struct {
	Descricao string
}

type MedicacaoInput struct {
	Nome        string
	Dosagem     string
	Frequencia  string
	DataInicio  string
	DataFim     string // opcional
	Observacoes string // opcional
}

type ExameInput struct {
	Nome        string
	Data        string
	Resultado   string
	Observacoes string // opcional
}

type AnotacaoInput struct {
	Texto string
}

// ValidarDadosPaciente valida a etapa de identidade + endereço.
func ValidarDadosPaciente(p *PacienteInput) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(p.Nome)) < 3 {
		errs["paciente.nome"] = "Nome deve ter pelo menos 3 caracteres"
	}
	if !dataValida(p.DataNascimento) {
		errs["paciente.dataNascimento"] = "Data de nascimento inválida"
	}
	if !ValidarCPF(p.CPF) {
		errs["paciente.cpf"] = "CPF inválido"
	}
	if !p.Genero.Valido() {
		errs["paciente.genero"] = "Selecione um gênero"
	}
	if !ValidarTelefone(p.Telefone) {
		errs["paciente.telefone"] = "Telefone inválido (10 ou 11 dígitos)"
	}
	if !ValidarEmail(p.Email) {
		errs["paciente.email"] = "Email inválido"
	}
	e := p.Endereco
	if len(strings.TrimSpace(e.Logradouro)) < 3 {
		errs["paciente.endereco.logradouro"] = "Logradouro inválido"
	}
	if strings.TrimSpace(e.Numero) == "" {
		errs["paciente.endereco.numero"] = "Número é obrigatório"
	}
	if len(strings.TrimSpace(e.Bairro)) < 2 {
		errs["paciente.endereco.bairro"] = "Bairro inválido"
	}
	if len(strings.TrimSpace(e.Cidade)) < 2 {
		errs["paciente.endereco.cidade"] = "Cidade inválida"
	}
	if len(strings.TrimSpace(e.Estado)) != 2 {
		errs["paciente.endereco.estado"] = "Use a sigla do estado (ex: SP)"
	}
	if !ValidarCEP(e.CEP) {
		errs["paciente.endereco.cep"] = "CEP inválido (8 dígitos)"
	}
	return errs
}

// ValidarInformacoesTratamento valida a etapa de tratamento.
func ValidarInformacoesTratamento(t *TratamentoInput) FieldErrors {
	errs := FieldErrors{}
	if !t.TipoTratamento.Valido() {
		errs["tipoTratamento"] = "Selecione um tipo de tratamento"
	}
	if len(strings.TrimSpace(t.Descricao)) < 10 {
		errs["historicoMedico.descricao"] = "Descrição deve ter pelo menos 10 caracteres"
	}
	return errs
}

// ValidarNovoHistorico valida o sub-registro de histórico médico.
func ValidarNovoHistorico(h *HistoricoInput) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(h.Descricao)) < 10 {
		errs["descricao"] = "A descrição deve ter pelo menos 10 caracteres"
	}
	return errs
}

// ValidarNovaMedicacao valida o sub-registro de medicação.
func ValidarNovaMedicacao(m *MedicacaoInput) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(m.Nome)) < 3 {
		errs["nome"] = "O nome deve ter pelo menos 3 caracteres"
	}
	if len(strings.TrimSpace(m.Dosagem)) < 2 {
		errs["dosagem"] = "A dosagem deve ser informada"
	}
	if len(strings.TrimSpace(m.Frequencia)) < 2 {
		errs["frequencia"] = "A frequência deve ser informada"
	}
	if len(strings.TrimSpace(m.DataInicio)) < 8 {
		errs["dataInicio"] = "A data de início deve ser informada"
	}
	return errs
}

// ValidarNovoExame valida o sub-registro de exame.
func ValidarNovoExame(e *ExameInput) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(e.Nome)) < 3 {
		errs["nome"] = "O nome deve ter pelo menos 3 caracteres"
	}
	if len(strings.TrimSpace(e.Data)) < 8 {
		errs["data"] = "A data deve ser informada"
	}
	if len(strings.TrimSpace(e.Resultado)) < 2 {
		errs["resultado"] = "O resultado deve ser informado"
	}
	return errs
}

// ValidarNovaAnotacao valida o sub-registro de anotação.
func ValidarNovaAnotacao(a *AnotacaoInput) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(a.Texto)) < 10 {
		errs["texto"] = "O texto deve ter pelo menos 10 caracteres"
	}
	return errs
}

// ValidarStatusTratamento valida a transição de status. A regra do motivo é
// reavaliada a cada mudança do status selecionado: fora da alta médica o campo
// deixa de bloquear a submissão mesmo que tenha sido inválido antes.
func ValidarStatusTratamento(status prontuario.StatusTratamento, motivoAlta string) FieldErrors {
	errs := FieldErrors{}
	if status == "" {
		errs["status"] = "O status é obrigatório"
		return errs
	}
	if !status.Valido() {
		errs["status"] = "Status de tratamento inválido"
		return errs
	}
	if status == prontuario.AltaMedica && len(strings.TrimSpace(motivoAlta)) < prontuario.MotivoAltaMinimo {
		errs["motivoAlta"] = "O motivo da alta é obrigatório e deve ter pelo menos 10 caracteres"
	}
	return errs
}
