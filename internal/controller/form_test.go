package controller

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prontuario/console/internal/client"
	"github.com/prontuario/console/internal/prontuario"
	"github.com/prontuario/console/internal/validation"
)

func pacienteValido() validation.PacienteInput {
	return validation.PacienteInput{
		Nome:           "Maria Silva",
		DataNascimento: "1990-05-10",
		CPF:            "529.982.247-25",
		Genero:         prontuario.GeneroFeminino,
		Telefone:       "11987654321",
		Email:          "maria@example.com",
		Endereco: validation.EnderecoInput{
			Logradouro: "Rua das Flores",
			Numero:     "123",
			Bairro:     "Centro",
			Cidade:     "São Paulo",
			Estado:     "SP",
			CEP:        "01310100",
		},
	}
}

func TestDefaultsDoFormulario(t *testing.T) {
	f := NewForm()
	if f.Etapa() != 1 {
		t.Fatalf("expected etapa 1, got %d", f.Etapa())
	}
	if !validation.ValidarCPF(f.Dados.Paciente.CPF) {
		t.Fatalf("expected pre-filled valid CPF, got %q", f.Dados.Paciente.CPF)
	}
	if f.Dados.Paciente.Genero != prontuario.GeneroNaoInformado {
		t.Fatalf("unexpected default genero %q", f.Dados.Paciente.Genero)
	}
	if f.Dados.Tratamento.TipoTratamento != prontuario.TerapiaIndividual {
		t.Fatalf("unexpected default tipo %q", f.Dados.Tratamento.TipoTratamento)
	}
}

func TestAvancarExigeEtapaValida(t *testing.T) {
	f := NewForm()
	if errs := f.Avancar(); errs.Ok() || f.Etapa() != 1 {
		t.Fatalf("expected blocked advance, errs=%v etapa=%d", errs, f.Etapa())
	}

	f.Dados.Paciente = pacienteValido()
	if errs := f.Avancar(); !errs.Ok() || f.Etapa() != 2 {
		t.Fatalf("expected advance, errs=%v etapa=%d", errs, f.Etapa())
	}

	// Voltar nunca bloqueia e preserva o digitado.
	f.Dados.Tratamento.Descricao = "Acompanhamento"
	f.Voltar()
	if f.Etapa() != 1 || f.Dados.Tratamento.Descricao != "Acompanhamento" {
		t.Fatalf("expected data preserved on back, etapa=%d", f.Etapa())
	}
}

func TestToWireFromWireRoundTrip(t *testing.T) {
	dados := FormData{
		Paciente: pacienteValido(),
		Tratamento: validation.TratamentoInput{
			TipoTratamento: prontuario.TerapiaCasal,
			Descricao:      "Paciente em acompanhamento quinzenal.",
		},
	}
	req := ToWire(dados, "PRONT-42")

	if req.NomePaciente != "Maria Silva" || req.Paciente.Nome != "Maria Silva" {
		t.Fatalf("expected nome replicated, got %q / %q", req.NomePaciente, req.Paciente.Nome)
	}
	if req.Paciente.Logradouro != "Rua das Flores" || req.Paciente.CEP != "01310100" {
		t.Fatalf("expected address flattened, got %+v", req.Paciente)
	}
	if req.HistoricoMedico != dados.Tratamento.Descricao || req.NumeroProntuario != "PRONT-42" {
		t.Fatalf("unexpected wire payload %+v", req)
	}

	pac := req.Paciente
	lido := &prontuario.Prontuario{
		NomePaciente:     req.NomePaciente,
		Paciente:         &pac,
		HistoricoMedico:  req.HistoricoMedico,
		TipoTratamento:   req.TipoTratamento,
		NumeroProntuario: req.NumeroProntuario,
	}
	if got := FromWire(lido); !reflect.DeepEqual(got, dados) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, dados)
	}
}

func TestFromWireSemSnapshotDePaciente(t *testing.T) {
	got := FromWire(&prontuario.Prontuario{NomePaciente: "João Souza", TipoTratamento: prontuario.TerapiaGrupo})
	if got.Paciente.Nome != "João Souza" {
		t.Fatalf("expected nome from flat field, got %q", got.Paciente.Nome)
	}
}

type criarMock struct {
	req *client.NovoProntuario
}

func (m *criarMock) Criar(_ context.Context, req *client.NovoProntuario) (*prontuario.Prontuario, error) {
	m.req = req
	pac := req.Paciente
	return &prontuario.Prontuario{
		ID:               1,
		NomePaciente:     req.NomePaciente,
		Paciente:         &pac,
		HistoricoMedico:  req.HistoricoMedico,
		TipoTratamento:   req.TipoTratamento,
		NumeroProntuario: req.NumeroProntuario,
		StatusTratamento: prontuario.EmTratamento,
	}, nil
}

func TestCreateSubmitGeraNumero(t *testing.T) {
	api := &criarMock{}
	c := NewCreate(api, zerolog.Nop())
	c.Form.Dados.Paciente = pacienteValido()
	c.Form.Dados.Tratamento.Descricao = "Crise aguda."

	criado, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !prontuario.NumeroProntuarioValido(api.req.NumeroProntuario) {
		t.Fatalf("unexpected generated number %q", api.req.NumeroProntuario)
	}
	if criado.ID == 0 {
		t.Fatal("expected created id returned")
	}
	if criado.NomePaciente != "Maria Silva" || criado.TipoTratamento != prontuario.TerapiaIndividual {
		t.Fatalf("unexpected created record %+v", criado)
	}
}

func TestCreateSubmitInvalidoNaoChamaAPI(t *testing.T) {
	api := &criarMock{}
	c := NewCreate(api, zerolog.Nop())
	c.Form.Dados.Paciente = pacienteValido()
	c.Form.Dados.Tratamento.Descricao = "curta"

	_, err := c.Submit(context.Background())
	if err == nil || !strings.Contains(err.Error(), "historicoMedico.descricao") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.req != nil {
		t.Fatal("API called with invalid form")
	}
}

type editarMock struct {
	existente *prontuario.Prontuario
	req       *client.NovoProntuario
	id        int64
}

func (m *editarMock) BuscarPorID(_ context.Context, id int64) (*prontuario.Prontuario, error) {
	return m.existente, nil
}

func (m *editarMock) Atualizar(_ context.Context, id int64, req *client.NovoProntuario) (*prontuario.Prontuario, error) {
	m.id = id
	m.req = req
	pac := req.Paciente
	return &prontuario.Prontuario{ID: id, NomePaciente: req.NomePaciente, Paciente: &pac, NumeroProntuario: req.NumeroProntuario}, nil
}

func TestEditPreservaNumeroDoProntuario(t *testing.T) {
	pac := pacienteValido()
	existente := &prontuario.Prontuario{
		ID:           9,
		NomePaciente: pac.Nome,
		Paciente: &prontuario.Paciente{
			Nome:           pac.Nome,
			DataNascimento: pac.DataNascimento,
			CPF:            pac.CPF,
			Genero:         pac.Genero,
			Telefone:       pac.Telefone,
			Email:          pac.Email,
			Logradouro:     pac.Endereco.Logradouro,
			Numero:         pac.Endereco.Numero,
			Bairro:         pac.Endereco.Bairro,
			Cidade:         pac.Endereco.Cidade,
			Estado:         pac.Endereco.Estado,
			CEP:            pac.Endereco.CEP,
		},
		HistoricoMedico:  "Paciente em acompanhamento quinzenal.",
		TipoTratamento:   prontuario.TerapiaIndividual,
		NumeroProntuario: "PRONT-170000000000042",
	}
	api := &editarMock{existente: existente}
	c := NewEdit(api, zerolog.Nop())

	if err := c.Load(context.Background(), 9); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Form.Dados.Paciente.Nome != "Maria Silva" {
		t.Fatalf("form not filled from record: %+v", c.Form.Dados)
	}

	c.Form.Dados.Paciente.Telefone = "11912345678"
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.id != 9 || api.req.NumeroProntuario != "PRONT-170000000000042" {
		t.Fatalf("expected number preserved, got id=%d numero=%q", api.id, api.req.NumeroProntuario)
	}
	if api.req.Paciente.Telefone != "11912345678" {
		t.Fatalf("edit not applied: %+v", api.req.Paciente)
	}
}
