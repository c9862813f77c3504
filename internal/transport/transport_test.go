package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(srvURL, token string) *Client {
	return New(srvURL, 5*time.Second, staticToken(token), zerolog.Nop())
}

func TestDoJSONAnexaBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "token-abc")
	var out map[string]bool
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if !out["ok"] {
		t.Fatal("expected decoded response")
	}
}

func TestDoJSONSemTokenNaoEnviaHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestDo401DisparaHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "expirado")
	called := false
	c.OnUnauthorized = func() { called = true }

	err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !called {
		t.Fatal("expected OnUnauthorized hook")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
}

func TestDo403DisparaHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "t")
	called := false
	c.OnForbidden = func() { called = true }
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if !called {
		t.Fatal("expected OnForbidden hook")
	}
}

func TestDoJSONQueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("termo", "maria")
	q.Set("pagina", "2")
	c := newTestClient(srv.URL, "t")
	if err := c.DoJSON(context.Background(), http.MethodGet, "/prontuarios", q, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("termo") != "maria" || gotQuery.Get("pagina") != "2" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestDecodeAPIError(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Prontuário não encontrado"}`, "Prontuário não encontrado"},
		{"error", `{"error":"forbidden"}`, "forbidden"},
		{"campo a campo ordenado", `{"nome":"obrigatório","cpf":"inválido"}`, "cpf: inválido; nome: obrigatório"},
		{"string pura", `"algo deu errado"`, "algo deu errado"},
		{"vazio", ``, "erro na requisição (status 500)"},
		{"forma desconhecida", `{"detalhes":{"x":1}}`, "erro na requisição (status 500)"},
	}
	for _, c := range cases {
		e := decodeAPIError(500, []byte(c.body))
		if got := e.Error(); got != c.want {
			t.Fatalf("%s: want %q got %q", c.name, c.want, got)
		}
	}
}

func TestDecodeAPIErrorJoinDeterministico(t *testing.T) {
	body := []byte(`{"b":"2","a":"1","c":"3"}`)
	want := "a: 1; b: 2; c: 3"
	for i := 0; i < 10; i++ {
		if got := decodeAPIError(400, body).Error(); got != want {
			t.Fatalf("want %q got %q", want, got)
		}
	}
}

func TestDoJSONRawMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"qualquer":"coisa"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "t")
	var raw json.RawMessage
	if err := c.DoJSON(context.Background(), http.MethodPost, "/x", nil, map[string]string{"a": "b"}, &raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"qualquer":"coisa"}` {
		t.Fatalf("expected body unchanged, got %s", raw)
	}
}
