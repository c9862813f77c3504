// Package controller implementa o estado de tela por cima do cliente: a tela
// de detalhe com seus modais de anexo e os formulários de criação/edição em
// duas etapas.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prontuario/console/internal/client"
	"github.com/prontuario/console/internal/prontuario"
	"github.com/prontuario/console/internal/transport"
	"github.com/prontuario/console/internal/validation"
)

// Modal identifica cada aba de anexo da tela de detalhe.
type Modal string

const (
	ModalHistorico  Modal = "historico"
	ModalMedicacoes Modal = "medicacoes"
	ModalExames     Modal = "exames"
	ModalAnotacoes  Modal = "anotacoes"
	ModalStatus     Modal = "status"
)

// Fase do ciclo de vida de um modal.
type Fase int

const (
	Fechado Fase = iota
	Aberto
	Enviando
	Sucesso
	Falha
)

// ErroGenerico é exibido quando o servidor falha sem mensagem aproveitável.
const ErroGenerico = "Erro ao salvar. Tente novamente."

// fechamentoAutomatico é quanto tempo o modal fica em Sucesso antes de fechar
// sozinho.
const fechamentoAutomatico = 2 * time.Second

// ModalState é o estado observável de um modal.
type ModalState struct {
	Fase Fase
	Erro string
}

// RecordAPI é o recorte do cliente que a tela de detalhe usa.
type RecordAPI interface {
	BuscarPorID(ctx context.Context, id int64) (*prontuario.Prontuario, error)
	AdicionarHistoricoMedico(ctx context.Context, id int64, req client.NovoHistorico) (json.RawMessage, error)
	AdicionarMedicacao(ctx context.Context, id int64, req client.NovaMedicacao) (json.RawMessage, error)
	AdicionarExame(ctx context.Context, id int64, req client.NovoExame) (json.RawMessage, error)
	AdicionarAnotacao(ctx context.Context, id int64, req client.NovaAnotacao) (json.RawMessage, error)
	AtualizarStatusTratamento(ctx context.Context, id int64, t prontuario.Transicao) (json.RawMessage, error)
}

// DetailController mantém o prontuário exibido e um modal independente por
// aba. O protocolo de cada envio é sempre o mesmo: validar localmente, chamar
// a API, reler o prontuário inteiro e só então marcar sucesso. O cliente
// nunca tenta fundir a resposta do anexo no registro em memória.
type DetailController struct {
	api        RecordAPI
	log        zerolog.Logger
	closeDelay time.Duration
	schedule   func(d time.Duration, fn func())

	mu       sync.Mutex
	registro *prontuario.Prontuario
	modais   map[Modal]*modal
}

type modal struct {
	fase Fase
	erro string
	gen  int
}

func NewDetail(api RecordAPI, log zerolog.Logger) *DetailController {
	return &DetailController{
		api:        api,
		log:        log,
		closeDelay: fechamentoAutomatico,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		modais: map[Modal]*modal{},
	}
}

// Load busca o prontuário e o torna o registro exibido.
func (d *DetailController) Load(ctx context.Context, id int64) error {
	p, err := d.api.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.registro = p
	d.mu.Unlock()
	return nil
}

// Registro devolve o prontuário exibido no momento (pode ser nil antes de
// Load).
func (d *DetailController) Registro() *prontuario.Prontuario {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registro
}

// Estado devolve o estado observável do modal.
func (d *DetailController) Estado(m Modal) ModalState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.modal(m)
	return ModalState{Fase: st.fase, Erro: st.erro}
}

// Abrir abre o modal zerado. Abrir um modal já aberto limpa erro anterior.
func (d *DetailController) Abrir(m Modal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.modal(m)
	st.fase = Aberto
	st.erro = ""
	st.gen++
}

// Fechar fecha o modal imediatamente. Um fechamento automático pendente para
// a geração anterior vira no-op.
func (d *DetailController) Fechar(m Modal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.modal(m)
	st.fase = Fechado
	st.erro = ""
	st.gen++
}

// SubmitHistorico valida e anexa um registro de histórico médico.
func (d *DetailController) SubmitHistorico(ctx context.Context, in validation.HistoricoInput) error {
	return d.submit(ctx, ModalHistorico, validation.ValidarNovoHistorico(&in), func(ctx context.Context, id int64) error {
		_, err := d.api.AdicionarHistoricoMedico(ctx, id, client.NovoHistorico{Descricao: in.Descricao})
		return err
	})
}

// SubmitMedicacao valida e anexa uma medicação.
func (d *DetailController) SubmitMedicacao(ctx context.Context, in validation.MedicacaoInput) error {
	return d.submit(ctx, ModalMedicacoes, validation.ValidarNovaMedicacao(&in), func(ctx context.Context, id int64) error {
		_, err := d.api.AdicionarMedicacao(ctx, id, client.NovaMedicacao{
			Nome:        in.Nome,
			Dosagem:     in.Dosagem,
			Frequencia:  in.Frequencia,
			DataInicio:  in.DataInicio,
			DataFim:     in.DataFim,
			Observacoes: in.Observacoes,
		})
		return err
	})
}

// SubmitExame valida e anexa um exame, com arquivo opcional.
func (d *DetailController) SubmitExame(ctx context.Context, in validation.ExameInput, arquivo []byte, nomeArquivo string) error {
	return d.submit(ctx, ModalExames, validation.ValidarNovoExame(&in), func(ctx context.Context, id int64) error {
		_, err := d.api.AdicionarExame(ctx, id, client.NovoExame{
			Nome:        in.Nome,
			Data:        in.Data,
			Resultado:   in.Resultado,
			Observacoes: in.Observacoes,
			Arquivo:     arquivo,
			NomeArquivo: nomeArquivo,
		})
		return err
	})
}

// SubmitAnotacao valida e anexa uma anotação.
func (d *DetailController) SubmitAnotacao(ctx context.Context, in validation.AnotacaoInput) error {
	return d.submit(ctx, ModalAnotacoes, validation.ValidarNovaAnotacao(&in), func(ctx context.Context, id int64) error {
		_, err := d.api.AdicionarAnotacao(ctx, id, client.NovaAnotacao{Texto: in.Texto})
		return err
	})
}

// SubmitStatus valida e envia a transição de status pelo modal de status.
func (d *DetailController) SubmitStatus(ctx context.Context, status prontuario.StatusTratamento, motivoAlta string) error {
	return d.submit(ctx, ModalStatus, validation.ValidarStatusTratamento(status, motivoAlta), func(ctx context.Context, id int64) error {
		_, err := d.api.AtualizarStatusTratamento(ctx, id, prontuario.Transicao{Status: status, MotivoAlta: motivoAlta})
		return err
	})
}

// submit executa o protocolo comum: validação local barra a chamada de rede;
// sucesso só depois da releitura do prontuário; falha mantém o modal aberto
// com a mensagem do servidor (ou a genérica) e não toca no registro exibido.
func (d *DetailController) submit(ctx context.Context, m Modal, errs validation.FieldErrors, call func(ctx context.Context, id int64) error) error {
	d.mu.Lock()
	if d.registro == nil {
		d.mu.Unlock()
		return errors.New("nenhum prontuário carregado")
	}
	id := d.registro.ID
	if !errs.Ok() {
		st := d.modal(m)
		st.fase = Falha
		st.erro = errs.Error()
		d.mu.Unlock()
		return errs
	}
	st := d.modal(m)
	st.fase = Enviando
	st.erro = ""
	gen := st.gen
	d.mu.Unlock()

	if err := call(ctx, id); err != nil {
		d.falhar(m, gen, err)
		return err
	}

	// A releitura acontece mesmo se o modal foi fechado no meio do envio:
	// o registro exibido não pode ficar para trás da mutação confirmada.
	p, err := d.api.BuscarPorID(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.log.Warn().Int64("id", id).Err(err).Msg("releitura após anexo falhou")
	} else {
		d.registro = p
	}
	st = d.modal(m)
	if st.gen != gen || st.fase != Enviando {
		return nil
	}
	st.fase = Sucesso
	d.schedule(d.closeDelay, func() {
		d.fecharSeSucesso(m, gen)
	})
	return nil
}

func (d *DetailController) falhar(m Modal, gen int, err error) {
	msg := ErroGenerico
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		if s := apiErr.ServerMessage(); s != "" {
			msg = s
		}
	}
	d.log.Error().Str("modal", string(m)).Err(err).Msg("anexo falhou")

	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.modal(m)
	if st.gen != gen {
		return
	}
	st.fase = Falha
	st.erro = msg
}

func (d *DetailController) fecharSeSucesso(m Modal, gen int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.modal(m)
	if st.gen != gen || st.fase != Sucesso {
		return
	}
	st.fase = Fechado
	st.erro = ""
}

func (d *DetailController) modal(m Modal) *modal {
	st, ok := d.modais[m]
	if !ok {
		st = &modal{}
		d.modais[m] = st
	}
	return st
}
