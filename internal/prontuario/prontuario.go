package prontuario

// Genero do paciente, conforme o backend.
type Genero string

const (
	GeneroMasculino    Genero = "MASCULINO"
	GeneroFeminino     Genero = "FEMININO"
	GeneroOutro        Genero = "OUTRO"
	GeneroNaoInformado Genero = "NAO_INFORMADO"
)

// Valido informa se o valor é um dos gêneros aceitos.
func (g Genero) Valido() bool {
	switch g {
	case GeneroMasculino, GeneroFeminino, GeneroOutro, GeneroNaoInformado:
		return true
	}
	return false
}

type TipoTratamento string

const (
	TerapiaIndividual TipoTratamento = "TERAPIA_INDIVIDUAL"
	TerapiaCasal      TipoTratamento = "TERAPIA_CASAL"
	TerapiaGrupo      TipoTratamento = "TERAPIA_GRUPO"
	TerapiaFamiliar   TipoTratamento = "TERAPIA_FAMILIAR"
	TratamentoOutro   TipoTratamento = "OUTRO"
)

func (t TipoTratamento) Valido() bool {
	switch t {
	case TerapiaIndividual, TerapiaCasal, TerapiaGrupo, TerapiaFamiliar, TratamentoOutro:
		return true
	}
	return false
}

// Label retorna o rótulo de exibição em pt-BR.
func (t TipoTratamento) Label() string {
	switch t {
	case TerapiaIndividual:
		return "Terapia Individual"
	case TerapiaCasal:
		return "Terapia de Casal"
	case TerapiaGrupo:
		return "Terapia de Grupo"
	case TerapiaFamiliar:
		return "Terapia Familiar"
	case TratamentoOutro:
		return "Outro"
	}
	return string(t)
}

// Paciente é o snapshot do paciente embutido no prontuário. O backend pode
// omitir o bloco inteiro ou qualquer campo individual dependendo da revisão;
// campo vazio significa "não informado".
type Paciente struct {
	ID             int64  `json:"id,omitempty"`
	Nome           string `json:"nome"`
	DataNascimento string `json:"dataNascimento"`
	CPF            string `json:"cpf"`
	Genero         Genero `json:"genero"`
	Telefone       string `json:"telefone"`
	Email          string `json:"email"`
	Logradouro     string `json:"logradouro"`
	Numero         string `json:"numero"`
	Complemento    string `json:"complemento,omitempty"`
	Bairro         string `json:"bairro"`
	Cidade         string `json:"cidade"`
	Estado         string `json:"estado"`
	CEP            string `json:"cep"`
}

// Prontuario é o agregado clínico. Os campos clínicos (histórico, medicamentos,
// exames, condições clínicas) são strings não estruturadas mantidas pelo
// backend; o cliente nunca calcula a concatenação, apenas relê o registro
// completo após cada mutação.
type Prontuario struct {
	ID                    int64            `json:"id"`
	NomePaciente          string           `json:"nomePaciente"`
	Paciente              *Paciente        `json:"paciente,omitempty"`
	HistoricoMedico       string           `json:"historicoMedico"`
	Medicamentos          string           `json:"medicamentos"`
	Exames                string           `json:"exames"`
	CondicoesClinicas     string           `json:"condicoesClinicas"`
	TipoTratamento        TipoTratamento   `json:"tipoTratamento"`
	NumeroProntuario      string           `json:"numeroProntuario"`
	DataCriacao           string           `json:"dataCriacao"`
	DataUltimaAtualizacao string           `json:"dataUltimaAtualizacao"`
	UltimaAlteracaoPor    string           `json:"ultimaAlteracaoPor,omitempty"`
	StatusTratamento      StatusTratamento `json:"statusTratamento,omitempty"`
	DataAlta              string           `json:"dataAlta,omitempty"`
	MotivoAlta            string           `json:"motivoAlta,omitempty"`
}

// EffectiveStatus interpreta a ausência de status como EM_TRATAMENTO
// (estado legado/padrão). Toda exibição deve passar por aqui em vez de
// assumir o default no render.
func EffectiveStatus(p *Prontuario) StatusTratamento {
	if p == nil || p.StatusTratamento == "" {
		return EmTratamento
	}
	return p.StatusTratamento
}
