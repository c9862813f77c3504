package validation

import (
	"testing"

	"github.com/prontuario/console/internal/prontuario"
)

func TestValidarCPF(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"52998224725", true},
		{"529.982.247-25", true},
		{"52998224752", false}, // dígitos verificadores transpostos
		{"11111111111", false}, // dígitos repetidos
		{"00000000000", false},
		{"5299822472", false},   // 10 dígitos
		{"529982247255", false}, // 12 dígitos
		{"", false},
		{"abc", false},
	}
	for _, c := range cases {
		if got := ValidarCPF(c.in); got != c.want {
			t.Fatalf("cpf=%q want=%v got=%v", c.in, c.want, got)
		}
	}
}

func TestGerarCPFValido(t *testing.T) {
	for i := 0; i < 100; i++ {
		cpf := GerarCPFValido()
		if len(cpf) != 11 {
			t.Fatalf("expected 11 digits, got %q", cpf)
		}
		if !ValidarCPF(cpf) {
			t.Fatalf("generated CPF %q does not validate", cpf)
		}
	}
}

func TestValidarTelefone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"4733221100", true},
		{"47988776655", true},
		{"(47) 98877-6655", true},
		{"12345", false},
		{"123456789012", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidarTelefone(c.in); got != c.want {
			t.Fatalf("telefone=%q want=%v got=%v", c.in, c.want, got)
		}
	}
}

func TestValidarCEP(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"89200000", true},
		{"89200-000", true},
		{"892000", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidarCEP(c.in); got != c.want {
			t.Fatalf("cep=%q want=%v got=%v", c.in, c.want, got)
		}
	}
}

func pacienteValido() *PacienteInput {
	return &PacienteInput{
		Nome:           "Maria Silva",
		DataNascimento: "1990-05-20",
		CPF:            "52998224725",
		Genero:         prontuario.GeneroFeminino,
		Telefone:       "47988776655",
		Email:          "maria@exemplo.com",
		Endereco: EnderecoInput{
			Logradouro: "Rua das Flores",
			Numero:     "123",
			Bairro:     "Centro",
			Cidade:     "Joinville",
			Estado:     "SC",
			CEP:        "89200000",
		},
	}
}

func TestValidarDadosPaciente(t *testing.T) {
	if errs := ValidarDadosPaciente(pacienteValido()); !errs.Ok() {
		t.Fatalf("expected valid patient, got %v", errs)
	}

	p := pacienteValido()
	p.Nome = "Ab"
	p.CPF = "11111111111"
	p.Endereco.Estado = "Santa Catarina"
	errs := ValidarDadosPaciente(p)
	for _, campo := range []string{"paciente.nome", "paciente.cpf", "paciente.endereco.estado"} {
		if _, ok := errs[campo]; !ok {
			t.Fatalf("expected error for %s, got %v", campo, errs)
		}
	}
	if _, ok := errs["paciente.email"]; ok {
		t.Fatalf("email should be valid, got %v", errs)
	}
}

func TestValidarInformacoesTratamento(t *testing.T) {
	ok := &TratamentoInput{TipoTratamento: prontuario.TerapiaIndividual, Descricao: "paciente em acompanhamento"}
	if errs := ValidarInformacoesTratamento(ok); !errs.Ok() {
		t.Fatalf("expected valid, got %v", errs)
	}
	bad := &TratamentoInput{TipoTratamento: "YOGA", Descricao: "curto"}
	errs := ValidarInformacoesTratamento(bad)
	if _, okErr := errs["tipoTratamento"]; !okErr {
		t.Fatalf("expected tipoTratamento error, got %v", errs)
	}
	if _, okErr := errs["historicoMedico.descricao"]; !okErr {
		t.Fatalf("expected descricao error, got %v", errs)
	}
}

func TestValidarSubRegistros(t *testing.T) {
	if errs := ValidarNovoHistorico(&HistoricoInput{Descricao: "consulta de retorno"}); !errs.Ok() {
		t.Fatalf("historico: %v", errs)
	}
	if errs := ValidarNovoHistorico(&HistoricoInput{Descricao: "curta"}); errs.Ok() {
		t.Fatal("historico curto deveria falhar")
	}

	med := &MedicacaoInput{Nome: "Sertralina", Dosagem: "50mg", Frequencia: "1x ao dia", DataInicio: "2026-01-10"}
	if errs := ValidarNovaMedicacao(med); !errs.Ok() {
		t.Fatalf("medicacao: %v", errs)
	}
	if errs := ValidarNovaMedicacao(&MedicacaoInput{}); len(errs) != 4 {
		t.Fatalf("expected 4 required-field errors, got %v", errs)
	}

	ex := &ExameInput{Nome: "Hemograma", Data: "2026-02-01", Resultado: "Normal"}
	if errs := ValidarNovoExame(ex); !errs.Ok() {
		t.Fatalf("exame: %v", errs)
	}
	if errs := ValidarNovoExame(&ExameInput{Nome: "He"}); errs.Ok() {
		t.Fatal("exame incompleto deveria falhar")
	}

	if errs := ValidarNovaAnotacao(&AnotacaoInput{Texto: "paciente faltou à sessão"}); !errs.Ok() {
		t.Fatalf("anotacao: %v", errs)
	}
	if errs := ValidarNovaAnotacao(&AnotacaoInput{Texto: "ok"}); errs.Ok() {
		t.Fatal("anotacao curta deveria falhar")
	}
}

func TestValidarStatusTratamentoCondicional(t *testing.T) {
	// Motivo curto bloqueia somente a alta médica.
	if errs := ValidarStatusTratamento(prontuario.AltaMedica, "curto"); errs.Ok() {
		t.Fatal("alta com motivo curto deveria falhar")
	}
	if errs := ValidarStatusTratamento(prontuario.AltaMedica, "melhora clínica sustentada"); !errs.Ok() {
		t.Fatalf("alta com motivo válido: %v", errs)
	}
	// O mesmo motivo curto deixa de bloquear quando o status muda.
	for _, s := range []prontuario.StatusTratamento{prontuario.EmTratamento, prontuario.AbandonouTratamento, prontuario.Transferido} {
		if errs := ValidarStatusTratamento(s, "curto"); !errs.Ok() {
			t.Fatalf("status=%s: motivo opcional não deveria bloquear, got %v", s, errs)
		}
		if errs := ValidarStatusTratamento(s, ""); !errs.Ok() {
			t.Fatalf("status=%s: motivo vazio não deveria bloquear, got %v", s, errs)
		}
	}
	if errs := ValidarStatusTratamento("", ""); errs.Ok() {
		t.Fatal("status vazio deveria falhar")
	}
}

func TestFieldErrorsJoinDeterministico(t *testing.T) {
	errs := FieldErrors{"nome": "obrigatório", "cpf": "inválido", "email": "inválido"}
	want := "cpf: inválido; email: inválido; nome: obrigatório"
	for i := 0; i < 10; i++ {
		if got := errs.Error(); got != want {
			t.Fatalf("join must be deterministic: want %q got %q", want, got)
		}
	}
}
