package controller

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/prontuario/console/internal/client"
	"github.com/prontuario/console/internal/prontuario"
	"github.com/prontuario/console/internal/validation"
)

// FormData é o modelo aninhado do formulário em duas etapas: identidade e
// endereço do paciente na primeira, classificação do tratamento e histórico
// inicial na segunda.
type FormData struct {
	Paciente   validation.PacienteInput
	Tratamento validation.TratamentoInput
}

// NewFormData devolve o formulário com os defaults de criação: um CPF válido
// gerado, gênero não informado e terapia individual.
func NewFormData() FormData {
	return FormData{
		Paciente: validation.PacienteInput{
			CPF:    validation.GerarCPFValido(),
			Genero: prontuario.GeneroNaoInformado,
		},
		Tratamento: validation.TratamentoInput{
			TipoTratamento: prontuario.TerapiaIndividual,
		},
	}
}

// FormController conduz o formulário etapa a etapa. Avançar só é permitido
// com a etapa atual válida; voltar nunca é bloqueado e preserva o que foi
// digitado.
type FormController struct {
	Dados FormData
	etapa int
}

func NewForm() *FormController {
	return &FormController{Dados: NewFormData(), etapa: 1}
}

func (f *FormController) Etapa() int { return f.etapa }

// Avancar valida a etapa 1 e, se ok, passa para a etapa 2.
func (f *FormController) Avancar() validation.FieldErrors {
	errs := validation.ValidarDadosPaciente(&f.Dados.Paciente)
	if errs.Ok() && f.etapa == 1 {
		f.etapa = 2
	}
	return errs
}

// Voltar retorna à etapa 1 sem descartar nada.
func (f *FormController) Voltar() {
	f.etapa = 1
}

// Validar valida o formulário inteiro, as duas etapas de uma vez.
func (f *FormController) Validar() validation.FieldErrors {
	errs := validation.ValidarDadosPaciente(&f.Dados.Paciente)
	for k, v := range validation.ValidarInformacoesTratamento(&f.Dados.Tratamento) {
		errs[k] = v
	}
	return errs
}

// ToWire achata o formulário aninhado no payload da API: endereço embutido no
// paciente, descrição do tratamento como histórico médico e o nome replicado
// em nome_paciente.
func ToWire(d FormData, numero string) *client.NovoProntuario {
	p := d.Paciente
	e := p.Endereco
	return &client.NovoProntuario{
		Paciente: prontuario.Paciente{
			Nome:           p.Nome,
			DataNascimento: p.DataNascimento,
			CPF:            p.CPF,
			Genero:         p.Genero,
			Telefone:       p.Telefone,
			Email:          p.Email,
			Logradouro:     e.Logradouro,
			Numero:         e.Numero,
			Complemento:    e.Complemento,
			Bairro:         e.Bairro,
			Cidade:         e.Cidade,
			Estado:         e.Estado,
			CEP:            e.CEP,
		},
		TipoTratamento:   d.Tratamento.TipoTratamento,
		HistoricoMedico:  d.Tratamento.Descricao,
		NumeroProntuario: numero,
		NomePaciente:     p.Nome,
	}
}

// FromWire reconstrói o formulário aninhado a partir de um prontuário lido da
// API. É o inverso exato de ToWire para os campos que o formulário edita.
func FromWire(p *prontuario.Prontuario) FormData {
	d := FormData{
		Tratamento: validation.TratamentoInput{
			TipoTratamento: p.TipoTratamento,
			Descricao:      p.HistoricoMedico,
		},
	}
	if pac := p.Paciente; pac != nil {
		d.Paciente = validation.PacienteInput{
			Nome:           pac.Nome,
			DataNascimento: pac.DataNascimento,
			CPF:            pac.CPF,
			Genero:         pac.Genero,
			Telefone:       pac.Telefone,
			Email:          pac.Email,
			Endereco: validation.EnderecoInput{
				Logradouro:  pac.Logradouro,
				Numero:      pac.Numero,
				Complemento: pac.Complemento,
				Bairro:      pac.Bairro,
				Cidade:      pac.Cidade,
				Estado:      pac.Estado,
				CEP:         pac.CEP,
			},
		}
	} else {
		d.Paciente.Nome = p.NomePaciente
	}
	return d
}

// CreateAPI é o recorte do cliente usado pela criação.
type CreateAPI interface {
	Criar(ctx context.Context, req *client.NovoProntuario) (*prontuario.Prontuario, error)
}

// CreateController embrulha o formulário para o fluxo de novo prontuário. O
// número do prontuário é gerado no cliente no momento do envio.
type CreateController struct {
	Form *FormController
	api  CreateAPI
	log  zerolog.Logger
}

func NewCreate(api CreateAPI, log zerolog.Logger) *CreateController {
	return &CreateController{Form: NewForm(), api: api, log: log}
}

// Submit valida as duas etapas e cria o prontuário.
func (c *CreateController) Submit(ctx context.Context) (*prontuario.Prontuario, error) {
	if errs := c.Form.Validar(); !errs.Ok() {
		return nil, errs
	}
	req := ToWire(c.Form.Dados, prontuario.NovoNumeroProntuario())
	criado, err := c.api.Criar(ctx, req)
	if err != nil {
		return nil, err
	}
	c.log.Info().Int64("id", criado.ID).Str("numero", criado.NumeroProntuario).Msg("prontuário criado")
	return criado, nil
}

// EditAPI é o recorte do cliente usado pela edição.
type EditAPI interface {
	BuscarPorID(ctx context.Context, id int64) (*prontuario.Prontuario, error)
	Atualizar(ctx context.Context, id int64, req *client.NovoProntuario) (*prontuario.Prontuario, error)
}

// EditController carrega um prontuário existente no formulário e envia a
// edição preservando o número original.
type EditController struct {
	Form *FormController
	api  EditAPI
	log  zerolog.Logger

	id     int64
	numero string
}

func NewEdit(api EditAPI, log zerolog.Logger) *EditController {
	return &EditController{Form: NewForm(), api: api, log: log}
}

// Load busca o prontuário e preenche o formulário com os dados atuais.
func (c *EditController) Load(ctx context.Context, id int64) error {
	p, err := c.api.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	c.id = p.ID
	c.numero = p.NumeroProntuario
	c.Form.Dados = FromWire(p)
	c.Form.etapa = 1
	return nil
}

// Submit valida e envia a edição. O número do prontuário nunca muda.
func (c *EditController) Submit(ctx context.Context) (*prontuario.Prontuario, error) {
	if errs := c.Form.Validar(); !errs.Ok() {
		return nil, errs
	}
	req := ToWire(c.Form.Dados, c.numero)
	atualizado, err := c.api.Atualizar(ctx, c.id, req)
	if err != nil {
		return nil, err
	}
	c.log.Info().Int64("id", atualizado.ID).Msg("prontuário atualizado")
	return atualizado, nil
}
