// Package transport é a fronteira de rede do cliente: anexa o token Bearer,
// serializa corpos JSON ou multipart e traduz respostas de erro. Não há
// retry; o timeout vem da configuração e vale para o round-trip inteiro.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TokenSource fornece o token persistido. Token vazio significa requisição
// sem Authorization.
type TokenSource interface {
	Token() string
}

// Client embrulha um *http.Client com a base da API e os ganchos de
// autenticação. OnUnauthorized e OnForbidden são os equivalentes dos
// redirecionamentos de login e de "sem permissão" do frontend.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    zerolog.Logger

	OnUnauthorized func()
	OnForbidden    func()
}

// New cria o cliente de transporte. baseURL inclui o prefixo /api.
func New(baseURL string, timeout time.Duration, tokens TokenSource, log zerolog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

// DoJSON envia uma requisição com corpo JSON (ou sem corpo, se body é nil) e
// decodifica a resposta em out quando out não é nil. Falhas HTTP viram
// *APIError; falhas de rede são propagadas sem tradução.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("transport: encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// DoMultipart envia um POST multipart/form-data com os campos de texto e um
// arquivo. Usado apenas pelo anexo de exame.
func (c *Client) DoMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("transport: write field %s: %w", k, err)
		}
	}
	fw, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("transport: create form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("transport: copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("transport: close multipart: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("transport: new request: %w", err)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Str("method", req.Method).Str("url", req.URL.Path).Err(err).Msg("falha de rede")
		return err
	}
	defer resp.Body.Close()

	c.log.Info().
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("requisição API")

	if resp.StatusCode == http.StatusUnauthorized && c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}
	if resp.StatusCode == http.StatusForbidden && c.OnForbidden != nil {
		c.OnForbidden()
	}

	slurp, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, slurp)
	}
	if out == nil || len(slurp) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], slurp...)
		return nil
	}
	if err := json.Unmarshal(slurp, out); err != nil {
		return fmt.Errorf("transport: decode response: %w", err)
	}
	return nil
}
