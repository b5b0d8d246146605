package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"chat-cli/internal/app"
	"chat-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func newStateStore(cfg app.Config) (app.StateStore, func()) {
	if cfg.Storage == "bolt" {
		store, err := app.NewBoltStateStore(cfg.StatePath)
		if err == nil {
			return store, func() { _ = store.Close() }
		}
		log.WithError(err).Warn("bolt store unavailable, falling back to file store")
	}
	return app.NewFileStateStore(cfg.StatePath), func() {}
}

func runHealth(client app.ChatClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("backend is not healthy: %w", err)
	}
	fmt.Println("backend is healthy")
	return nil
}

func main() {
	var configPath string
	var serverURL string
	var mock bool
	var health bool

	root := &cobra.Command{
		Use:     "chat",
		Short:   "Terminal client for the competitor-research chat API",
		Long:    "chat keeps multiple conversation threads against the research backend, persists them locally, and resends failed turns.\n\nRun without flags for the interactive TUI. Use --mock to try it without a backend.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}
			if mock {
				cfg.Mock = true
			}

			app.SetupLogging(cfg.LogFile)

			var client app.ChatClient
			if cfg.Mock {
				client = app.NewMockChatClient()
			} else {
				client = app.NewHTTPChatClient(cfg.ServerURL, time.Duration(cfg.RequestTimeout)*time.Second)
			}

			if health {
				return runHealth(client)
			}

			store, closeStore := newStateStore(cfg)
			defer closeStore()

			sessions := app.NewSessionManager(store)
			coord := app.NewCoordinator(sessions, client)

			p := tea.NewProgram(tui.New(sessions, coord, cfg.Mock), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	root.Flags().BoolVar(&mock, "mock", false, "run against a canned offline backend")
	root.Flags().BoolVar(&health, "health", false, "probe the backend health endpoint and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
