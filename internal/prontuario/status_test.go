package prontuario

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTransicaoPayloadOmiteMotivoForaDaAlta(t *testing.T) {
	// Para todo status exceto alta médica, motivo vazio passa e o corpo
	// não carrega o campo motivoAlta.
	for _, s := range []StatusTratamento{EmTratamento, AbandonouTratamento, Transferido} {
		p, err := Transicao{Status: s}.Payload()
		if err != nil {
			t.Fatalf("status=%s: unexpected error %v", s, err)
		}
		b, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if strings.Contains(string(b), "motivoAlta") {
			t.Fatalf("status=%s: body must omit motivoAlta, got %s", s, b)
		}
	}
}

func TestTransicaoPayloadDescartaMotivoForaDaAlta(t *testing.T) {
	p, err := Transicao{Status: Transferido, MotivoAlta: "mudança de cidade do paciente"}.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MotivoAlta != "" {
		t.Fatalf("motivo must be dropped for non-discharge, got %q", p.MotivoAlta)
	}
}

func TestTransicaoAltaExigeMotivo(t *testing.T) {
	cases := []struct {
		motivo string
		wantOk bool
	}{
		{"", false},
		{"curto", false},
		{"123456789", false},
		{"          ", false},
		{"paciente apresentou melhora completa", true},
		{"1234567890", true},
	}
	for _, c := range cases {
		err := Transicao{Status: AltaMedica, MotivoAlta: c.motivo}.Validate()
		if (err == nil) != c.wantOk {
			t.Fatalf("motivo=%q wantOk=%v gotErr=%v", c.motivo, c.wantOk, err)
		}
	}
}

func TestTransicaoAltaIncluiStatusEMotivo(t *testing.T) {
	p, err := Transicao{Status: AltaMedica, MotivoAlta: "tratamento concluído com sucesso"}.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := json.Marshal(p)
	if !strings.Contains(string(b), `"status":"ALTA_MEDICA"`) || !strings.Contains(string(b), `"motivoAlta"`) {
		t.Fatalf("discharge body must carry status and motivo, got %s", b)
	}
}

func TestTransicaoStatusInvalido(t *testing.T) {
	if err := (Transicao{Status: "ARQUIVADO"}).Validate(); err != ErrStatusInvalido {
		t.Fatalf("expected ErrStatusInvalido, got %v", err)
	}
}

func TestEffectiveStatus(t *testing.T) {
	if got := EffectiveStatus(nil); got != EmTratamento {
		t.Fatalf("nil record: expected EM_TRATAMENTO, got %s", got)
	}
	if got := EffectiveStatus(&Prontuario{}); got != EmTratamento {
		t.Fatalf("empty status: expected EM_TRATAMENTO, got %s", got)
	}
	if got := EffectiveStatus(&Prontuario{StatusTratamento: Transferido}); got != Transferido {
		t.Fatalf("expected TRANSFERIDO, got %s", got)
	}
}

func TestLabels(t *testing.T) {
	if EmTratamento.Label() != "Em Tratamento" {
		t.Fatalf("unexpected label: %s", EmTratamento.Label())
	}
	if AltaMedica.Label() != "Alta Médica" {
		t.Fatalf("unexpected label: %s", AltaMedica.Label())
	}
	if TerapiaCasal.Label() != "Terapia de Casal" {
		t.Fatalf("unexpected label: %s", TerapiaCasal.Label())
	}
}
