package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jesseruder/electric-lullaby/internal/client/api"
	"github.com/jesseruder/electric-lullaby/internal/client/camera"
	"github.com/jesseruder/electric-lullaby/internal/client/push"
	"github.com/jesseruder/electric-lullaby/internal/client/screen"
	"github.com/jesseruder/electric-lullaby/internal/client/storage"
	"github.com/jesseruder/electric-lullaby/internal/client/websocket"
	"github.com/jesseruder/electric-lullaby/internal/config"
	"github.com/jesseruder/electric-lullaby/internal/logger"

	tea "github.com/charmbracelet/bubbletea"
)

func loadConfig(apiHost, workspace string) (*config.Config, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)

	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, err
	}
	if apiHost != "" {
		cfg.APIHost = apiHost
	}
	if workspace != "" {
		cfg.WorkspacePath = workspace
	}

	if os.IsNotExist(statErr) {
		if err := config.SaveConfigTo(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write %s: %v", path, err)
		}
	}
	return cfg, config.InitializeStructure(cfg)
}

func run(cfg *config.Config, lg *logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(cfg.CredentialsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.APIHost)

	var notifications chan struct{}
	if cfg.Notifications {
		deviceToken, err := push.DeviceToken(ctx, store)
		if err != nil {
			return err
		}
		notifications = make(chan struct{}, 1)
		receiver := &websocket.Receiver{
			Endpoint:  cfg.NotificationsURL(),
			PushToken: deviceToken,
			Logger:    lg.Logger,
		}
		go receiver.Run(ctx, notifications)
	}

	deps := screen.Deps{
		API:         client,
		Credentials: store,
		Push:        &push.Registrar{KV: store, Sender: client, Granted: cfg.Notifications},
		Camera: &camera.FFmpeg{
			Device: cfg.CameraDevice,
			Format: cfg.CameraFormat,
			Dir:    cfg.CapturesDir(),
		},
		Notifications:   notifications,
		Logger:          lg.Logger,
		DiagnosticsDir:  cfg.LogsDir(),
		DisplayInterval: cfg.DisplayInterval(),
	}

	p := tea.NewProgram(screen.New(deps), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	apiHost := flag.String("api", "", "backend base URL (overrides config and LULLABY_API_HOST)")
	workspace := flag.String("workspace", "", "workspace directory for logs, credentials and captures")
	flag.Parse()

	cfg, err := loadConfig(*apiHost, *workspace)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	lg, err := logger.Setup(cfg.LogsDir(), "client", false)
	if err != nil {
		lg = logger.Fallback()
		lg.Printf("file logging unavailable: %v", err)
	}
	defer lg.Close()
	lg.Printf("starting against %s", cfg.APIHost)

	if err := run(cfg, lg); err != nil {
		lg.Printf("Error: %v", err)
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
