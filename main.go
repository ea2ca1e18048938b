package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"minimap_sync/internal/config"
	"minimap_sync/internal/hud"
	"minimap_sync/internal/minimap"
	"minimap_sync/internal/server"
	"minimap_sync/internal/settings"
	"minimap_sync/internal/utils"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var basePath string
	var debug bool
	flag.StringVar(&basePath, "prefix", "", "Config file base path")
	flag.BoolVar(&debug, "debug", false, "Write debug logs")
	flag.Parse()

	// Load MainConfig
	cfg, err := config.LoadMainConfig(basePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Load config failed: %v", err)
		}
		log.Printf("No config file found, using defaults: %v", err)
	}

	logs := utils.NewManager(cfg.ResolvePath(cfg.LogPath), debug)
	defer logs.Close()

	persister, closePersister, err := openPersister(cfg)
	if err != nil {
		log.Fatalf("Open settings failed: %v", err)
	}
	defer closePersister()

	store, err := settings.NewStore(persister, logs.Logger("settings"))
	if err != nil {
		log.Fatalf("Load settings failed: %v", err)
	}

	feed := hud.NewStatusFeed(cfg.ModName, 0)
	feed.OnPush(func(line string) {
		fmt.Println(feed.RenderLine(line))
	})

	session, err := minimap.NewSession(minimap.Options{
		PlayerID:   cfg.PlayerID,
		ModName:    cfg.ModName,
		ChannelTag: cfg.ChannelTag,
		Store:      store,
		Status:     feed,
		Logger:     logs.Logger("session"),
	})
	if err != nil {
		log.Fatalf("Create session failed: %v", err)
	}

	node := server.NewNode(cfg, session, logs.Logger("relay"), logs.Logger("peer"))

	log.Printf("Ready to start %s node %q on port %s", cfg.Mode, cfg.NodeName, cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(ctx, node)
	}()

	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- server.NewConsole(session, feed, os.Stdout).Run(ctx, os.Stdin)
	}()

	select {
	case <-ctx.Done():
		log.Println("Stopping node...")
	case err := <-consoleDone:
		if err != nil {
			log.Printf("Console stopped: %v", err)
		}
		stop()
	case err := <-serverErr:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
		log.Println("Node stopped")
		return
	}

	if err := <-serverErr; err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Node stopped")
}

func openPersister(cfg *config.MainConfig) (settings.Persister, func(), error) {
	path := cfg.ResolvePath(cfg.SettingsPath)
	switch cfg.SettingsDriver {
	case config.SettingsDriverSQLite:
		p, err := settings.OpenSQLitePersister(path)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {
			if err := p.Close(); err != nil {
				log.Printf("failed to close settings db: %v", err)
			}
		}, nil
	default:
		return settings.NewYAMLPersister(path), func() {}, nil
	}
}
