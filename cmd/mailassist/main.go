package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailassist/internal/ai"
	"github.com/nhle/mailassist/internal/app"
	"github.com/nhle/mailassist/internal/auth"
	"github.com/nhle/mailassist/internal/inbox"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/remote"
	"github.com/nhle/mailassist/internal/session"
	"github.com/nhle/mailassist/internal/store"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mailassist: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config.yaml")
	ephemeral := flag.Bool("ephemeral", false, "keep the session and chat transcript in memory only")
	redirect := flag.String("redirect", "", "complete sign-in with a provider redirect URL")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("mailassist", version)
		return nil
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(model.ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "mailassist")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}

	dbPath := filepath.Join(model.ConfigDir(), "mailassist.db")
	sessCfg := cfg.Session
	if *ephemeral {
		dbPath = ":memory:"
		sessCfg.Backend = "memory"
	}
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	backend, err := session.FromConfig(sessCfg, db)
	if err != nil {
		return err
	}
	sess := session.New(backend)

	client := remote.NewClientFromConfig(cfg.Service)
	provider := auth.NewProvider(cfg.Auth)
	if !provider.Configured() {
		log.Printf("auth: no OAuth client ID configured")
	}

	root := app.New(app.Deps{
		Controller:      inbox.New(client, sess, cfg.Inbox.PageSize),
		Assistant:       ai.New(client, db, sess, cfg.Chat.HistoryLimit),
		Authenticator:   auth.NewAuthenticator(client, sess),
		Provider:        provider,
		Config:          cfg,
		ConfigPath:      *configPath,
		PendingRedirect: *redirect,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
