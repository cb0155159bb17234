package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/config"
	"github.com/jesseruder/electric-lullaby/internal/logger"
	"github.com/jesseruder/electric-lullaby/internal/server/api"
	"github.com/jesseruder/electric-lullaby/internal/server/database"
	"github.com/jesseruder/electric-lullaby/internal/server/websocket"
	"github.com/jesseruder/electric-lullaby/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var statusLabelStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1).
	MarginRight(2)

// backend is everything started by boot.
type backend struct {
	db     *database.DB
	server *api.Server
	hub    *websocket.Hub
	stop   context.CancelFunc
	errs   <-chan error
}

func boot(cfg *config.ServerConfig, lg *logger.Logger) (*backend, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	hubCtx, stop := context.WithCancel(context.Background())
	hub := websocket.NewHub(lg.Logger)
	go hub.Run(hubCtx)

	srv := api.NewServer(cfg, db, hub, lg.Logger)
	return &backend{db: db, server: srv, hub: hub, stop: stop, errs: srv.Start()}, nil
}

func (b *backend) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.server.Shutdown(ctx)
	b.stop()
	b.db.Close()
}

type errMsg error

type bootedMsg struct {
	backend *backend
}

type tickMsg time.Time

type model struct {
	cfg     *config.ServerConfig
	logger  *logger.Logger
	backend *backend
	err     error
	loading bool
	tick    int
}

func initialModel(cfg *config.ServerConfig, lg *logger.Logger) model {
	return model{cfg: cfg, logger: lg, loading: true}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) start() tea.Msg {
	b, err := boot(m.cfg, m.logger)
	if err != nil {
		m.logger.Printf("boot failed: %v", err)
		return errMsg(err)
	}
	return bootedMsg{backend: b}
}

func waitForServerError(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		if err, ok := <-errs; ok {
			return errMsg(err)
		}
		return nil
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.start, tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.backend != nil {
				m.backend.shutdown()
			}
			return m, tea.Quit
		}

	case tickMsg:
		m.tick++
		return m, tick()

	case bootedMsg:
		m.loading = false
		m.backend = msg.backend
		return m, waitForServerError(msg.backend.errs)

	case errMsg:
		m.loading = false
		m.err = msg
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	header := ui.HeaderStyle.Render(" ELECTRIC LULLABY BACKEND ") + "\n"
	subHeader := ui.SubHeaderStyle.Render("Photos for your followers, every five seconds") + "\n"

	var statusContent string
	switch {
	case m.err != nil:
		statusContent = fmt.Sprintf("%s\n\n%s",
			statusLabelStyle.Background(ui.ErrorCol).Foreground(ui.Text).Render(" FATAL ERROR "),
			ui.ErrorTextStyle.Render(m.err.Error()))

	case m.loading:
		statusContent = fmt.Sprintf("%s\n\n%s",
			statusLabelStyle.Background(ui.Accent).Foreground(ui.Dark).Render(" STARTING "),
			ui.MutedStyle.Render("Connecting to Postgres and running migrations..."))

	default:
		onlineTag := " ONLINE "
		if m.tick%2 == 0 {
			onlineTag = " • ONLINE "
		}
		statusContent = fmt.Sprintf("%s\n\n%s %s\n%s %s\n%s %s\n%s %s",
			statusLabelStyle.Background(ui.Success).Foreground(ui.Dark).Render(onlineTag),
			ui.InfoKeyStyle.Render("Listening"), ui.InfoValueStyle.Render(":"+m.cfg.Port),
			ui.InfoKeyStyle.Render("Public URL"), ui.InfoValueStyle.Render(m.cfg.PublicURL),
			ui.InfoKeyStyle.Render("Devices"), ui.InfoValueStyle.Render(fmt.Sprint(m.backend.hub.Connections())),
			ui.InfoKeyStyle.Render("Uptime"), ui.SuccessStyle().Render(m.backend.server.Uptime().Truncate(time.Second).String()),
		)
	}

	body := ui.CardStyle.Render(statusContent)
	footer := ui.FooterStyle.Render("▸ Press 'q' to gracefully shutdown")

	return fmt.Sprintf("%s%s%s\n%s", header, subHeader, body, footer)
}

func runHeadless(cfg *config.ServerConfig, lg *logger.Logger) error {
	b, err := boot(cfg, lg)
	if err != nil {
		return err
	}
	defer b.shutdown()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		return nil
	case err := <-b.errs:
		return err
	}
}

func main() {
	headless := flag.Bool("headless", false, "run without the status dashboard, logging to stdout")
	flag.Parse()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	lg, err := logger.Setup(cfg.LogDir, "server", *headless)
	if err != nil {
		lg = logger.Fallback()
		lg.Printf("file logging unavailable: %v", err)
	}
	defer lg.Close()

	if *headless {
		if err := runHeadless(cfg, lg); err != nil {
			lg.Printf("Error: %v", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(initialModel(cfg, lg))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
