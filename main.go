// divine-tui - A terminal interface for the Divine AI chat client.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/divine-tui/internal/cloud"
	"github.com/jeranaias/divine-tui/internal/config"
	"github.com/jeranaias/divine-tui/internal/dispatch"
	"github.com/jeranaias/divine-tui/internal/memory"
	"github.com/jeranaias/divine-tui/internal/profile"
	"github.com/jeranaias/divine-tui/internal/quota"
	"github.com/jeranaias/divine-tui/internal/session"
	"github.com/jeranaias/divine-tui/internal/store"
	"github.com/jeranaias/divine-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.divine/config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("divine-tui %s (%s)\n", Version, GitCommit)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	kv, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer kv.Close()

	registry := profile.NewRegistry()
	sessions := session.NewStore(kv, registry)
	tracker := quota.NewTracker(kv)
	mem := memory.NewManager(kv)
	client := cloud.NewClient(cfg.APIKey).
		WithBaseURL(cfg.APIURL).
		WithTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second)

	pipeline := dispatch.NewPipeline(sessions, tracker, registry, client, mem)

	model := ui.New(ui.Deps{
		Config:   cfg,
		KV:       kv,
		Sessions: sessions,
		Pipeline: pipeline,
		Registry: registry,
		Tracker:  tracker,
		Memory:   mem,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run interface: %w", err)
	}
	return nil
}
