package stub

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prontuario/console/internal/prontuario"
)

var (
	ErrNaoEncontrado   = errors.New("prontuário não encontrado")
	ErrNumeroDuplicado = errors.New("número de prontuário já existe")
)

// Store guarda os prontuários em memória. Toda leitura devolve uma cópia;
// mutações acontecem dentro de Mutate, sob o lock.
type Store struct {
	mu      sync.Mutex
	seq     int64
	itens   map[int64]*prontuario.Prontuario
	numeros map[string]bool
}

func NewStore() *Store {
	return &Store{itens: make(map[int64]*prontuario.Prontuario), numeros: make(map[string]bool)}
}

// Criar insere um novo prontuário e atribui o id. O número de prontuário é
// único; repetir falha.
func (s *Store) Criar(p *prontuario.Prontuario) (*prontuario.Prontuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.numeros[p.NumeroProntuario] {
		return nil, ErrNumeroDuplicado
	}
	s.seq++
	p.ID = s.seq
	s.itens[p.ID] = p
	s.numeros[p.NumeroProntuario] = true
	cp := *p
	return &cp, nil
}

// Get devolve uma cópia do prontuário.
func (s *Store) Get(id int64) (*prontuario.Prontuario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.itens[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Mutate aplica fn ao prontuário sob o lock e devolve a cópia resultante.
func (s *Store) Mutate(id int64, fn func(*prontuario.Prontuario) error) (*prontuario.Prontuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.itens[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// Buscar filtra e devolve cópias, na ordem de criação.
func (s *Store) Buscar(filtro func(*prontuario.Prontuario) bool) []prontuario.Prontuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]prontuario.Prontuario, 0, len(s.itens))
	for id := int64(1); id <= s.seq; id++ {
		p, ok := s.itens[id]
		if !ok || !filtro(p) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// appendBloco concatena um bloco datado ao campo clínico, sem quebras de
// linha iniciais quando o campo ainda está vazio.
func appendBloco(atual, bloco string) string {
	if strings.TrimSpace(atual) == "" {
		return bloco
	}
	return atual + "\n\n" + bloco
}

func agora() string { return time.Now().Format(time.RFC3339) }

func blocoHistorico(descricao, responsavel string) string {
	return fmt.Sprintf("--- Registro adicionado em %s por %s ---\n%s", agora(), responsavel, descricao)
}

func blocoMedicacao(nome, dosagem, frequencia, observacoes, responsavel string) string {
	if observacoes == "" {
		observacoes = "N/A"
	}
	return fmt.Sprintf("--- Medicação adicionada em %s por %s ---\nNome: %s\nDosagem: %s\nFrequência: %s\nObservações: %s",
		agora(), responsavel, nome, dosagem, frequencia, observacoes)
}

func blocoExame(nome, data, resultado, observacoes, arquivo, responsavel string) string {
	if observacoes == "" {
		observacoes = "N/A"
	}
	b := fmt.Sprintf("--- Exame adicionado em %s por %s ---\nNome: %s\nData: %s\nResultado: %s\nObservações: %s",
		agora(), responsavel, nome, data, resultado, observacoes)
	if arquivo != "" {
		b += "\nArquivo: " + arquivo
	}
	return b
}

func blocoAnotacao(texto, responsavel string) string {
	return fmt.Sprintf("--- Anotação adicionada em %s por %s ---\n%s", agora(), responsavel, texto)
}

func blocoAlta(motivo, responsavel string) string {
	if motivo == "" {
		motivo = "Não informado"
	}
	return fmt.Sprintf("--- ALTA MÉDICA em %s por %s ---\nMotivo: %s", agora(), responsavel, motivo)
}
