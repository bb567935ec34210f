// Command apiserver runs the collection ledger REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardboxhq/cardbox/internal/api"
	"github.com/cardboxhq/cardbox/internal/cardlookup"
	"github.com/cardboxhq/cardbox/internal/config"
	"github.com/cardboxhq/cardbox/internal/importer"
	"github.com/cardboxhq/cardbox/internal/inventory"
	"github.com/cardboxhq/cardbox/internal/scryfall"
	"github.com/cardboxhq/cardbox/internal/storage"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
	"github.com/cardboxhq/cardbox/internal/version"
	"github.com/cardboxhq/cardbox/internal/watcher"
)

var (
	configPath  = flag.String("config", "", "Path to config file (default: ~/.cardbox/config.toml)")
	addr        = flag.String("addr", "", "Listen address, overrides the config file")
	dbPath      = flag.String("db-path", "", "Database path, overrides the config file")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetVersion())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	busyTimeout, err := cfg.GetBusyTimeout()
	if err != nil {
		log.Fatalf("Invalid busy timeout: %v", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	dbConfig.BusyTimeout = busyTimeout
	dbConfig.AutoMigrate = true

	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	var clientOpts []scryfall.Option
	if cfg.Scryfall.BaseURL != "" {
		clientOpts = append(clientOpts, scryfall.WithBaseURL(cfg.Scryfall.BaseURL))
	}
	client := scryfall.NewClient(clientOpts...)

	cacheMaxAge, err := cfg.GetCacheMaxAge()
	if err != nil {
		log.Fatalf("Invalid cache max age: %v", err)
	}
	resolver := cardlookup.NewServiceWithMaxAge(
		repository.NewCardRepository(db.Conn()), client, cacheMaxAge)

	server := api.NewServer(&api.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, db, resolver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watcher.Enabled {
		w := watcher.New(watcher.Config{
			Dir:    cfg.Watcher.Dir,
			UserID: cfg.Watcher.UserID,
		}, importer.New(resolver, inventory.NewEngine(db)))
		go func() {
			log.Printf("Watching %s for decklist drops", cfg.Watcher.Dir)
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	case sig := <-sigChan:
		log.Printf("Received %v, shutting down", sig)
	}

	cancel()

	shutdownTimeout, err := cfg.GetShutdownTimeout()
	if err != nil {
		shutdownTimeout = 0
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// loadConfig reads the config file, falling back to defaults when the
// default location has none.
func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load()
}
