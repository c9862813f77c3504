// prontuario-console é o cliente de linha de comando do sistema de
// prontuários: autenticação, busca, criação/edição de prontuários e anexo de
// registros clínicos, sempre relendo o prontuário após cada mutação.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prontuario/console/internal/auth"
	"github.com/prontuario/console/internal/client"
	"github.com/prontuario/console/internal/config"
	"github.com/prontuario/console/internal/controller"
	"github.com/prontuario/console/internal/prontuario"
	"github.com/prontuario/console/internal/transport"
	"github.com/prontuario/console/internal/validation"
)

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *auth.TokenStore
	tr     *transport.Client
	client *client.Client
}

func newApp() *app {
	cfg := config.Load()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	store := auth.NewTokenStore(cfg.TokenPath)
	tr := transport.New(cfg.APIBaseURL, cfg.RequestTimeout, store, log)
	tr.OnUnauthorized = func() {
		_ = store.Clear()
		fmt.Fprintln(os.Stderr, "Sessão expirada. Faça login novamente.")
	}
	tr.OnForbidden = func() {
		fmt.Fprintln(os.Stderr, "Você não tem permissão para esta ação.")
	}
	return &app{cfg: cfg, log: log, store: store, tr: tr, client: client.New(tr)}
}

func main() {
	a := newApp()

	root := &cobra.Command{
		Use:           "prontuario-console",
		Short:         "Console do sistema de prontuários",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.cmdLogin(),
		a.cmdLogout(),
		a.cmdListar(),
		a.cmdVer(),
		a.cmdCriar(),
		a.cmdEditar(),
		a.cmdAdicionarHistorico(),
		a.cmdAdicionarMedicacao(),
		a.cmdAdicionarExame(),
		a.cmdAdicionarAnotacao(),
		a.cmdAtualizarStatus(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}

func (a *app) cmdLogin() *cobra.Command {
	var email, senha string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Autentica e persiste o token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Login(cmd.Context(), a.tr, a.store, email, senha); err != nil {
				return err
			}
			fmt.Println("Login realizado.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "e-mail do operador")
	cmd.Flags().StringVar(&senha, "senha", "", "senha do operador")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("senha")
	return cmd
}

func (a *app) cmdLogout() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Descarta o token persistido",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Sessão encerrada.")
			return nil
		},
	}
}

func (a *app) cmdListar() *cobra.Command {
	var p client.BuscaParams
	var tipo, status string
	cmd := &cobra.Command{
		Use:   "listar",
		Short: "Lista/pesquisa prontuários",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.TipoTratamento = prontuario.TipoTratamento(tipo)
			p.Status = prontuario.StatusTratamento(status)
			res, err := a.client.Buscar(cmd.Context(), p)
			if err != nil {
				return err
			}
			for _, r := range res.Content {
				fmt.Printf("%-6d %-24s %-30s %-20s %s\n",
					r.ID, r.NumeroProntuario, r.NomePaciente, r.TipoTratamento.Label(), prontuario.EffectiveStatus(&r).Label())
			}
			fmt.Printf("Página %d de %d (%d prontuários)\n",
				res.Pageable.PageNumber+1, res.Pageable.TotalPages, res.Pageable.TotalElements)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Termo, "termo", "", "busca por nome do paciente")
	cmd.Flags().StringVar(&p.NumeroProntuario, "numero", "", "número exato do prontuário")
	cmd.Flags().StringVar(&tipo, "tipo", "", "filtro por tipo de tratamento")
	cmd.Flags().StringVar(&status, "status", "", "filtro por status de tratamento")
	cmd.Flags().IntVar(&p.Pagina, "pagina", 0, "página (a partir de 0)")
	cmd.Flags().IntVar(&p.Tamanho, "tamanho", 10, "itens por página")
	return cmd
}

func (a *app) cmdVer() *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Mostra o prontuário completo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client.BuscarPorID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return imprimirJSON(p)
		},
	}
}

// formFlags registra os campos do formulário de paciente/tratamento como
// flags e devolve os ponteiros para montar o FormData depois.
func formFlags(cmd *cobra.Command, d *controller.FormData) {
	p := &d.Paciente
	e := &p.Endereco
	var genero, tipo string

	cmd.Flags().StringVar(&p.Nome, "nome", "", "nome do paciente")
	cmd.Flags().StringVar(&p.DataNascimento, "nascimento", "", "data de nascimento (AAAA-MM-DD)")
	cmd.Flags().StringVar(&p.CPF, "cpf", p.CPF, "CPF do paciente")
	cmd.Flags().StringVar(&genero, "genero", string(p.Genero), "gênero (MASCULINO|FEMININO|OUTRO|NAO_INFORMADO)")
	cmd.Flags().StringVar(&p.Telefone, "telefone", "", "telefone (10 ou 11 dígitos)")
	cmd.Flags().StringVar(&p.Email, "email", "", "e-mail do paciente")
	cmd.Flags().StringVar(&e.Logradouro, "logradouro", "", "logradouro")
	cmd.Flags().StringVar(&e.Numero, "numero-endereco", "", "número do endereço")
	cmd.Flags().StringVar(&e.Complemento, "complemento", "", "complemento")
	cmd.Flags().StringVar(&e.Bairro, "bairro", "", "bairro")
	cmd.Flags().StringVar(&e.Cidade, "cidade", "", "cidade")
	cmd.Flags().StringVar(&e.Estado, "estado", "", "sigla do estado (ex: SP)")
	cmd.Flags().StringVar(&e.CEP, "cep", "", "CEP (8 dígitos)")
	cmd.Flags().StringVar(&tipo, "tipo", string(d.Tratamento.TipoTratamento), "tipo de tratamento")
	cmd.Flags().StringVar(&d.Tratamento.Descricao, "historico", "", "histórico médico inicial")

	prev := cmd.PreRun
	cmd.PreRun = func(c *cobra.Command, args []string) {
		if prev != nil {
			prev(c, args)
		}
		if c.Flags().Changed("genero") || p.Genero == "" {
			p.Genero = prontuario.Genero(genero)
		}
		if c.Flags().Changed("tipo") || d.Tratamento.TipoTratamento == "" {
			d.Tratamento.TipoTratamento = prontuario.TipoTratamento(tipo)
		}
	}
}

func (a *app) cmdCriar() *cobra.Command {
	c := controller.NewCreate(a.client, a.log)
	cmd := &cobra.Command{
		Use:   "criar",
		Short: "Cria um prontuário (número gerado automaticamente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			criado, err := c.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Prontuário %s criado (id %d).\n", criado.NumeroProntuario, criado.ID)
			return nil
		},
	}
	formFlags(cmd, &c.Form.Dados)
	return cmd
}

func (a *app) cmdEditar() *cobra.Command {
	c := controller.NewEdit(a.client, a.log)
	var dados controller.FormData
	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita um prontuário existente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.Load(cmd.Context(), id); err != nil {
				return err
			}
			aplicarFlags(cmd, &c.Form.Dados, &dados)
			atualizado, err := c.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Prontuário %s atualizado.\n", atualizado.NumeroProntuario)
			return nil
		},
	}
	formFlags(cmd, &dados)
	return cmd
}

// aplicarFlags copia para o formulário carregado apenas os campos cujas flags
// foram informadas; o restante permanece como está no prontuário.
func aplicarFlags(cmd *cobra.Command, destino, origem *controller.FormData) {
	copia := map[string]func(){
		"nome":            func() { destino.Paciente.Nome = origem.Paciente.Nome },
		"nascimento":      func() { destino.Paciente.DataNascimento = origem.Paciente.DataNascimento },
		"cpf":             func() { destino.Paciente.CPF = origem.Paciente.CPF },
		"genero":          func() { destino.Paciente.Genero = origem.Paciente.Genero },
		"telefone":        func() { destino.Paciente.Telefone = origem.Paciente.Telefone },
		"email":           func() { destino.Paciente.Email = origem.Paciente.Email },
		"logradouro":      func() { destino.Paciente.Endereco.Logradouro = origem.Paciente.Endereco.Logradouro },
		"numero-endereco": func() { destino.Paciente.Endereco.Numero = origem.Paciente.Endereco.Numero },
		"complemento":     func() { destino.Paciente.Endereco.Complemento = origem.Paciente.Endereco.Complemento },
		"bairro":          func() { destino.Paciente.Endereco.Bairro = origem.Paciente.Endereco.Bairro },
		"cidade":          func() { destino.Paciente.Endereco.Cidade = origem.Paciente.Endereco.Cidade },
		"estado":          func() { destino.Paciente.Endereco.Estado = origem.Paciente.Endereco.Estado },
		"cep":             func() { destino.Paciente.Endereco.CEP = origem.Paciente.Endereco.CEP },
		"tipo":            func() { destino.Tratamento.TipoTratamento = origem.Tratamento.TipoTratamento },
		"historico":       func() { destino.Tratamento.Descricao = origem.Tratamento.Descricao },
	}
	for nome, aplica := range copia {
		if cmd.Flags().Changed(nome) {
			aplica()
		}
	}
}

// detalhe carrega o prontuário e executa o envio de um modal, imprimindo o
// registro relido ao final.
func (a *app) detalhe(ctx context.Context, id int64, m controller.Modal, submit func(d *controller.DetailController) error) error {
	d := controller.NewDetail(a.client, a.log)
	if err := d.Load(ctx, id); err != nil {
		return err
	}
	d.Abrir(m)
	if err := submit(d); err != nil {
		return err
	}
	fmt.Println("Registro adicionado.")
	return imprimirJSON(d.Registro())
}

func (a *app) cmdAdicionarHistorico() *cobra.Command {
	var in validation.HistoricoInput
	cmd := &cobra.Command{
		Use:   "adicionar-historico <id>",
		Short: "Anexa um registro ao histórico médico",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.detalhe(cmd.Context(), id, controller.ModalHistorico, func(d *controller.DetailController) error {
				return d.SubmitHistorico(cmd.Context(), in)
			})
		},
	}
	cmd.Flags().StringVar(&in.Descricao, "descricao", "", "descrição do registro")
	_ = cmd.MarkFlagRequired("descricao")
	return cmd
}

func (a *app) cmdAdicionarMedicacao() *cobra.Command {
	var in validation.MedicacaoInput
	cmd := &cobra.Command{
		Use:   "adicionar-medicacao <id>",
		Short: "Anexa uma medicação",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.detalhe(cmd.Context(), id, controller.ModalMedicacoes, func(d *controller.DetailController) error {
				return d.SubmitMedicacao(cmd.Context(), in)
			})
		},
	}
	cmd.Flags().StringVar(&in.Nome, "nome", "", "nome da medicação")
	cmd.Flags().StringVar(&in.Dosagem, "dosagem", "", "dosagem")
	cmd.Flags().StringVar(&in.Frequencia, "frequencia", "", "frequência")
	cmd.Flags().StringVar(&in.DataInicio, "inicio", "", "data de início (AAAA-MM-DD)")
	cmd.Flags().StringVar(&in.DataFim, "fim", "", "data de fim (opcional)")
	cmd.Flags().StringVar(&in.Observacoes, "observacoes", "", "observações (opcional)")
	return cmd
}

func (a *app) cmdAdicionarExame() *cobra.Command {
	var in validation.ExameInput
	var arquivo string
	cmd := &cobra.Command{
		Use:   "adicionar-exame <id>",
		Short: "Anexa um exame, com arquivo opcional",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var conteudo []byte
			if arquivo != "" {
				conteudo, err = os.ReadFile(arquivo)
				if err != nil {
					return err
				}
			}
			return a.detalhe(cmd.Context(), id, controller.ModalExames, func(d *controller.DetailController) error {
				return d.SubmitExame(cmd.Context(), in, conteudo, filepath.Base(arquivo))
			})
		},
	}
	cmd.Flags().StringVar(&in.Nome, "nome", "", "nome do exame")
	cmd.Flags().StringVar(&in.Data, "data", "", "data do exame (AAAA-MM-DD)")
	cmd.Flags().StringVar(&in.Resultado, "resultado", "", "resultado")
	cmd.Flags().StringVar(&in.Observacoes, "observacoes", "", "observações (opcional)")
	cmd.Flags().StringVar(&arquivo, "arquivo", "", "caminho do laudo a anexar (opcional)")
	return cmd
}

func (a *app) cmdAdicionarAnotacao() *cobra.Command {
	var in validation.AnotacaoInput
	cmd := &cobra.Command{
		Use:   "adicionar-anotacao <id>",
		Short: "Anexa uma anotação clínica",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.detalhe(cmd.Context(), id, controller.ModalAnotacoes, func(d *controller.DetailController) error {
				return d.SubmitAnotacao(cmd.Context(), in)
			})
		},
	}
	cmd.Flags().StringVar(&in.Texto, "texto", "", "texto da anotação")
	_ = cmd.MarkFlagRequired("texto")
	return cmd
}

func (a *app) cmdAtualizarStatus() *cobra.Command {
	var status, motivo string
	cmd := &cobra.Command{
		Use:   "atualizar-status <id>",
		Short: "Muda o status de tratamento (alta médica exige motivo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.detalhe(cmd.Context(), id, controller.ModalStatus, func(d *controller.DetailController) error {
				return d.SubmitStatus(cmd.Context(), prontuario.StatusTratamento(status), motivo)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "EM_TRATAMENTO|ALTA_MEDICA|ABANDONOU_TRATAMENTO|TRANSFERIDO")
	cmd.Flags().StringVar(&motivo, "motivo", "", "motivo da alta (obrigatório para ALTA_MEDICA)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id inválido: %q", s)
	}
	return id, nil
}

func imprimirJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
