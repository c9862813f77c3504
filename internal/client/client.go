// Package client expõe uma operação tipada por ação REST da API de
// prontuários. Nenhuma lógica de negócio mora aqui: os corpos vão como o
// chamador montou e as respostas voltam como o servidor mandou.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prontuario/console/internal/cache"
	"github.com/prontuario/console/internal/prontuario"
	"github.com/prontuario/console/internal/transport"
)

// buscaTTL é quanto tempo um resultado de busca fica em cache. Qualquer
// mutação limpa o cache inteiro.
const buscaTTL = 30 * time.Second

// BuscaParams são os filtros da listagem. Campos vazios não entram na query.
type BuscaParams struct {
	Termo            string
	NumeroProntuario string
	TipoTratamento   prontuario.TipoTratamento
	Status           prontuario.StatusTratamento
	Pagina           int
	Tamanho          int
}

// Pageable é o bloco de paginação retornado pela busca.
type Pageable struct {
	PageNumber    int `json:"pageNumber"`
	PageSize      int `json:"pageSize"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

type ResultadoBusca struct {
	Content  []prontuario.Prontuario `json:"content"`
	Pageable Pageable                `json:"pageable"`
}

// NovoProntuario é o payload achatado de criação/atualização: paciente com
// endereço já achatado, histórico como string simples e nome_paciente
// replicado (restrição not-null do backend).
type NovoProntuario struct {
	Paciente          prontuario.Paciente       `json:"paciente"`
	TipoTratamento    prontuario.TipoTratamento `json:"tipoTratamento"`
	HistoricoMedico   string                    `json:"historicoMedico"`
	NumeroProntuario  string                    `json:"numeroProntuario"`
	Medicamentos      string                    `json:"medicamentos,omitempty"`
	Exames            string                    `json:"exames,omitempty"`
	CondicoesClinicas string                    `json:"condicoesClinicas,omitempty"`
	NomePaciente      string                    `json:"nome_paciente"`
}

type NovoHistorico struct {
	Descricao string `json:"descricao"`
}

type NovaMedicacao struct {
	Nome        string `json:"nome"`
	Dosagem     string `json:"dosagem"`
	Frequencia  string `json:"frequencia"`
	DataInicio  string `json:"dataInicio"`
	DataFim     string `json:"dataFim,omitempty"`
	Observacoes string `json:"observacoes,omitempty"`
}

// NovoExame é o único payload com duas codificações: com Arquivo presente a
// requisição vai como multipart/form-data; sem arquivo, como JSON com os
// mesmos nomes de campo.
type NovoExame struct {
	Nome        string `json:"nome"`
	Data        string `json:"data"`
	Resultado   string `json:"resultado"`
	Observacoes string `json:"observacoes,omitempty"`

	Arquivo     []byte `json:"-"`
	NomeArquivo string `json:"-"`
}

type NovaAnotacao struct {
	Texto string `json:"texto"`
}

// Client é o cliente de prontuários por cima do transporte compartilhado.
type Client struct {
	tr     *transport.Client
	buscas *cache.TTL[*ResultadoBusca]
}

func New(tr *transport.Client) *Client {
	return &Client{tr: tr, buscas: cache.New[*ResultadoBusca](buscaTTL)}
}

// Buscar lista/pesquisa prontuários. Resultados ficam em cache por um TTL
// curto; qualquer mutação invalida.
func (c *Client) Buscar(ctx context.Context, p BuscaParams) (*ResultadoBusca, error) {
	q := url.Values{}
	if p.Termo != "" {
		q.Set("termo", p.Termo)
	}
	if p.NumeroProntuario != "" {
		q.Set("numeroProntuario", p.NumeroProntuario)
	}
	if p.TipoTratamento != "" {
		q.Set("tipoTratamento", string(p.TipoTratamento))
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	q.Set("pagina", strconv.Itoa(p.Pagina))
	q.Set("tamanho", strconv.Itoa(p.Tamanho))

	key := q.Encode()
	if r, ok := c.buscas.Get(key); ok {
		return r, nil
	}
	var out ResultadoBusca
	if err := c.tr.DoJSON(ctx, http.MethodGet, "/prontuarios", q, nil, &out); err != nil {
		return nil, err
	}
	c.buscas.Set(key, &out)
	return &out, nil
}

// BuscarPorID retorna o prontuário completo. É a única fonte de verdade após
// qualquer mutação.
func (c *Client) BuscarPorID(ctx context.Context, id int64) (*prontuario.Prontuario, error) {
	var out prontuario.Prontuario
	if err := c.tr.DoJSON(ctx, http.MethodGet, fmt.Sprintf("/prontuarios/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Criar registra um novo prontuário.
func (c *Client) Criar(ctx context.Context, req *NovoProntuario) (*prontuario.Prontuario, error) {
	var out prontuario.Prontuario
	if err := c.tr.DoJSON(ctx, http.MethodPost, "/prontuarios", nil, req, &out); err != nil {
		return nil, err
	}
	c.buscas.Clear()
	return &out, nil
}

// Atualizar aplica uma edição completa ou parcial.
func (c *Client) Atualizar(ctx context.Context, id int64, req *NovoProntuario) (*prontuario.Prontuario, error) {
	var out prontuario.Prontuario
	if err := c.tr.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/prontuarios/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	c.buscas.Clear()
	return &out, nil
}

// AdicionarHistoricoMedico anexa um registro ao histórico. O corpo da resposta
// volta intacto; quem chama deve reler o prontuário para ver o resultado.
func (c *Client) AdicionarHistoricoMedico(ctx context.Context, id int64, req NovoHistorico) (json.RawMessage, error) {
	return c.adicionar(ctx, id, "historico-medico", req)
}

// AdicionarMedicacao anexa uma medicação.
func (c *Client) AdicionarMedicacao(ctx context.Context, id int64, req NovaMedicacao) (json.RawMessage, error) {
	return c.adicionar(ctx, id, "medicacoes", req)
}

// AdicionarAnotacao anexa uma anotação.
func (c *Client) AdicionarAnotacao(ctx context.Context, id int64, req NovaAnotacao) (json.RawMessage, error) {
	return c.adicionar(ctx, id, "anotacoes", req)
}

// AdicionarExame anexa um exame, como multipart se houver arquivo.
func (c *Client) AdicionarExame(ctx context.Context, id int64, req NovoExame) (json.RawMessage, error) {
	path := fmt.Sprintf("/prontuarios/%d/exames", id)
	var raw json.RawMessage
	if len(req.Arquivo) > 0 {
		fields := map[string]string{
			"nome":      req.Nome,
			"data":      req.Data,
			"resultado": req.Resultado,
		}
		if req.Observacoes != "" {
			fields["observacoes"] = req.Observacoes
		}
		nome := req.NomeArquivo
		if nome == "" {
			nome = "arquivo"
		}
		if err := c.tr.DoMultipart(ctx, path, fields, "arquivo", nome, bytes.NewReader(req.Arquivo), &raw); err != nil {
			return nil, err
		}
	} else {
		if err := c.tr.DoJSON(ctx, http.MethodPost, path, nil, req, &raw); err != nil {
			return nil, err
		}
	}
	c.buscas.Clear()
	return raw, nil
}

// AtualizarStatusTratamento envia a transição pelo endpoint dedicado. A
// transição é validada antes: alta médica sem motivo não gera chamada de
// rede. O endpoint legado PATCH /prontuarios/{id}/status não é usado.
func (c *Client) AtualizarStatusTratamento(ctx context.Context, id int64, t prontuario.Transicao) (json.RawMessage, error) {
	payload, err := t.Payload()
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.tr.DoJSON(ctx, http.MethodPatch, fmt.Sprintf("/prontuarios/%d/status-tratamento", id), nil, payload, &raw); err != nil {
		return nil, err
	}
	c.buscas.Clear()
	return raw, nil
}

func (c *Client) adicionar(ctx context.Context, id int64, sufixo string, body any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.tr.DoJSON(ctx, http.MethodPost, fmt.Sprintf("/prontuarios/%d/%s", id, sufixo), nil, body, &raw); err != nil {
		return nil, err
	}
	c.buscas.Clear()
	return raw, nil
}
