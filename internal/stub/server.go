// Package stub sobe uma API de prontuários em memória com os mesmos
// endpoints e semântica do backend real, para desenvolvimento local e testes
// de integração do cliente.
package stub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/prontuario/console/internal/prontuario"
)

// Credenciais aceitas pelo login do stub.
const (
	AdminEmail = "admin@prontuario.local"
	AdminSenha = "admin123"
)

type Server struct {
	store  *Store
	secret []byte
	log    zerolog.Logger
}

func NewServer(secret []byte, log zerolog.Logger) *Server {
	return &Server{store: NewStore(), secret: secret, log: log}
}

// Router monta as rotas sob /api, com as de prontuário atrás do JWT.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/admin/login", s.login).Methods(http.MethodPost)

	priv := api.NewRoute().Subrouter()
	priv.Use(s.requireAuth)
	priv.HandleFunc("/prontuarios", s.buscar).Methods(http.MethodGet)
	priv.HandleFunc("/prontuarios", s.criar).Methods(http.MethodPost)
	priv.HandleFunc("/prontuarios/{id}", s.buscarPorID).Methods(http.MethodGet)
	priv.HandleFunc("/prontuarios/{id}", s.atualizar).Methods(http.MethodPut)
	priv.HandleFunc("/prontuarios/{id}/historico-medico", s.adicionarHistorico).Methods(http.MethodPost)
	priv.HandleFunc("/prontuarios/{id}/medicacoes", s.adicionarMedicacao).Methods(http.MethodPost)
	priv.HandleFunc("/prontuarios/{id}/exames", s.adicionarExame).Methods(http.MethodPost)
	priv.HandleFunc("/prontuarios/{id}/anotacoes", s.adicionarAnotacao).Methods(http.MethodPost)
	priv.HandleFunc("/prontuarios/{id}/status-tratamento", s.atualizarStatus).Methods(http.MethodPatch)
	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r)
		if raw == "" {
			http.Error(w, `{"error":"missing or invalid authorization"}`, http.StatusUnauthorized)
			return
		}
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		r = r.WithContext(contextWithOperador(r.Context(), claims.Subject))
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.Email != AdminEmail || req.Senha != AdminSenha {
		http.Error(w, `{"message":"Credenciais inválidas"}`, http.StatusUnauthorized)
		return
	}
	claims := jwt.RegisteredClaims{
		Subject:   req.Email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) buscar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	termo := strings.ToLower(q.Get("termo"))
	numero := q.Get("numeroProntuario")
	tipo := q.Get("tipoTratamento")
	status := q.Get("status")

	itens := s.store.Buscar(func(p *prontuario.Prontuario) bool {
		if termo != "" && !strings.Contains(strings.ToLower(p.NomePaciente), termo) {
			return false
		}
		if numero != "" && p.NumeroProntuario != numero {
			return false
		}
		if tipo != "" && string(p.TipoTratamento) != tipo {
			return false
		}
		if status != "" && string(prontuario.EffectiveStatus(p)) != status {
			return false
		}
		return true
	})

	pagina, _ := strconv.Atoi(q.Get("pagina"))
	tamanho, _ := strconv.Atoi(q.Get("tamanho"))
	if tamanho <= 0 {
		tamanho = 10
	}
	total := len(itens)
	totalPaginas := (total + tamanho - 1) / tamanho
	ini := pagina * tamanho
	if ini > total {
		ini = total
	}
	fim := ini + tamanho
	if fim > total {
		fim = total
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content": itens[ini:fim],
		"pageable": map[string]int{
			"pageNumber":    pagina,
			"pageSize":      tamanho,
			"totalPages":    totalPaginas,
			"totalElements": total,
		},
	})
}

// novoProntuarioRequest espelha o payload achatado de criação/atualização.
type novoProntuarioRequest struct {
	Paciente          prontuario.Paciente `json:"paciente"`
	TipoTratamento    string              `json:"tipoTratamento"`
	HistoricoMedico   string              `json:"historicoMedico"`
	NumeroProntuario  string              `json:"numeroProntuario"`
	Medicamentos      string              `json:"medicamentos"`
	Exames            string              `json:"exames"`
	CondicoesClinicas string              `json:"condicoesClinicas"`
	NomePaciente      string              `json:"nome_paciente"`
}

func (s *Server) criar(w http.ResponseWriter, r *http.Request) {
	var req novoProntuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if !prontuario.TipoTratamento(req.TipoTratamento).Valido() {
		http.Error(w, `{"message":"Tipo de tratamento inválido"}`, http.StatusBadRequest)
		return
	}
	nome := req.NomePaciente
	if nome == "" {
		nome = req.Paciente.Nome
	}
	pac := req.Paciente
	p := &prontuario.Prontuario{
		NomePaciente:          nome,
		Paciente:              &pac,
		HistoricoMedico:       req.HistoricoMedico,
		Medicamentos:          req.Medicamentos,
		Exames:                req.Exames,
		CondicoesClinicas:     req.CondicoesClinicas,
		TipoTratamento:        prontuario.TipoTratamento(req.TipoTratamento),
		NumeroProntuario:      req.NumeroProntuario,
		DataCriacao:           agora(),
		DataUltimaAtualizacao: agora(),
		UltimaAlteracaoPor:    operadorFrom(r.Context()),
		StatusTratamento:      prontuario.EmTratamento,
	}
	criado, err := s.store.Criar(p)
	if err != nil {
		http.Error(w, `{"message":"Número de prontuário já existe"}`, http.StatusBadRequest)
		return
	}
	s.log.Info().Int64("id", criado.ID).Str("numero", criado.NumeroProntuario).Msg("prontuário criado")
	writeJSON(w, http.StatusCreated, criado)
}

func (s *Server) buscarPorID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, found := s.store.Get(id)
	if !found {
		http.Error(w, `{"message":"Prontuário não encontrado"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) atualizar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req novoProntuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.TipoTratamento != "" && !prontuario.TipoTratamento(req.TipoTratamento).Valido() {
		http.Error(w, `{"message":"Tipo de tratamento inválido"}`, http.StatusBadRequest)
		return
	}
	atualizado, err := s.store.Mutate(id, func(p *prontuario.Prontuario) error {
		if req.NomePaciente != "" {
			p.NomePaciente = req.NomePaciente
		} else if req.Paciente.Nome != "" {
			p.NomePaciente = req.Paciente.Nome
		}
		if req.Paciente.Nome != "" {
			pac := req.Paciente
			p.Paciente = &pac
		}
		if req.TipoTratamento != "" {
			p.TipoTratamento = prontuario.TipoTratamento(req.TipoTratamento)
		}
		if req.HistoricoMedico != "" {
			p.HistoricoMedico = req.HistoricoMedico
		}
		p.DataUltimaAtualizacao = agora()
		p.UltimaAlteracaoPor = operadorFrom(r.Context())
		return nil
	})
	if err != nil {
		s.mutateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizado)
}

func (s *Server) adicionarHistorico(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Descricao string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Descricao) == "" {
		http.Error(w, `{"message":"A descrição é obrigatória"}`, http.StatusBadRequest)
		return
	}
	s.anexar(w, r, id, func(p *prontuario.Prontuario, op string) {
		p.HistoricoMedico = appendBloco(p.HistoricoMedico, blocoHistorico(req.Descricao, op))
	})
}

func (s *Server) adicionarMedicacao(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Nome        string `json:"nome"`
		Dosagem     string `json:"dosagem"`
		Frequencia  string `json:"frequencia"`
		DataInicio  string `json:"dataInicio"`
		DataFim     string `json:"dataFim"`
		Observacoes string `json:"observacoes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nome == "" || req.Dosagem == "" || req.Frequencia == "" {
		http.Error(w, `{"message":"Nome, dosagem e frequência são obrigatórios"}`, http.StatusBadRequest)
		return
	}
	s.anexar(w, r, id, func(p *prontuario.Prontuario, op string) {
		p.Medicamentos = appendBloco(p.Medicamentos, blocoMedicacao(req.Nome, req.Dosagem, req.Frequencia, req.Observacoes, op))
	})
}

func (s *Server) adicionarExame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var nome, data, resultado, observacoes, arquivo string
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, `{"error":"invalid multipart body"}`, http.StatusBadRequest)
			return
		}
		nome = r.FormValue("nome")
		data = r.FormValue("data")
		resultado = r.FormValue("resultado")
		observacoes = r.FormValue("observacoes")
		if _, hdr, err := r.FormFile("arquivo"); err == nil {
			arquivo = hdr.Filename
		}
	} else {
		var req struct {
			Nome        string `json:"nome"`
			Data        string `json:"data"`
			Resultado   string `json:"resultado"`
			Observacoes string `json:"observacoes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
			return
		}
		nome, data, resultado, observacoes = req.Nome, req.Data, req.Resultado, req.Observacoes
	}
	if nome == "" || data == "" || resultado == "" {
		http.Error(w, `{"message":"Nome, data e resultado são obrigatórios"}`, http.StatusBadRequest)
		return
	}
	s.anexar(w, r, id, func(p *prontuario.Prontuario, op string) {
		p.Exames = appendBloco(p.Exames, blocoExame(nome, data, resultado, observacoes, arquivo, op))
	})
}

func (s *Server) adicionarAnotacao(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Texto) == "" {
		http.Error(w, `{"message":"O texto da anotação é obrigatório"}`, http.StatusBadRequest)
		return
	}
	s.anexar(w, r, id, func(p *prontuario.Prontuario, op string) {
		p.CondicoesClinicas = appendBloco(p.CondicoesClinicas, blocoAnotacao(req.Texto, op))
	})
}

func (s *Server) atualizarStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status     string `json:"status"`
		MotivoAlta string `json:"motivoAlta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	status := prontuario.StatusTratamento(req.Status)
	if !status.Valido() {
		http.Error(w, `{"message":"Status de tratamento inválido"}`, http.StatusBadRequest)
		return
	}
	if status == prontuario.AltaMedica && len(strings.TrimSpace(req.MotivoAlta)) < prontuario.MotivoAltaMinimo {
		http.Error(w, `{"message":"O motivo da alta é obrigatório e deve ter pelo menos 10 caracteres"}`, http.StatusBadRequest)
		return
	}
	op := operadorFrom(r.Context())
	atualizado, err := s.store.Mutate(id, func(p *prontuario.Prontuario) error {
		p.StatusTratamento = status
		if status == prontuario.AltaMedica {
			p.DataAlta = agora()
			p.MotivoAlta = req.MotivoAlta
			p.HistoricoMedico = appendBloco(p.HistoricoMedico, blocoAlta(req.MotivoAlta, op))
		} else {
			p.DataAlta = ""
			p.MotivoAlta = ""
		}
		p.DataUltimaAtualizacao = agora()
		p.UltimaAlteracaoPor = op
		return nil
	})
	if err != nil {
		s.mutateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizado)
}

// anexar aplica um bloco clínico e devolve o prontuário atualizado.
func (s *Server) anexar(w http.ResponseWriter, r *http.Request, id int64, aplica func(*prontuario.Prontuario, string)) {
	op := operadorFrom(r.Context())
	atualizado, err := s.store.Mutate(id, func(p *prontuario.Prontuario) error {
		aplica(p, op)
		p.DataUltimaAtualizacao = agora()
		p.UltimaAlteracaoPor = op
		return nil
	})
	if err != nil {
		s.mutateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizado)
}

func (s *Server) mutateError(w http.ResponseWriter, err error) {
	if err == ErrNaoEncontrado {
		http.Error(w, `{"message":"Prontuário não encontrado"}`, http.StatusNotFound)
		return
	}
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
