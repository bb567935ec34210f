// Package watcher imports decklist files dropped into a directory.
// Each *.txt file is parsed, merged into the configured user's box, and
// renamed with a .done (or .failed) suffix so it is handled exactly once.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cardboxhq/cardbox/internal/importer"
)

const (
	// defaultSettleDelay is how long a file must sit untouched before it
	// is read, so partially written drops are not imported.
	defaultSettleDelay = 500 * time.Millisecond

	// rescanInterval is the backup poll in case file events are missed.
	rescanInterval = 30 * time.Second
)

// Config configures the drop directory watcher.
type Config struct {
	Dir         string
	UserID      int
	SettleDelay time.Duration
}

// Watcher imports decklist files as they appear in a directory.
type Watcher struct {
	cfg      Config
	importer *importer.Importer
	stopChan chan struct{}
}

// New creates a watcher over the given directory.
func New(cfg Config, imp *importer.Importer) *Watcher {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	return &Watcher{cfg: cfg, importer: imp, stopChan: make(chan struct{})}
}

// Run processes files already in the directory, then watches for new ones
// until the context is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) (err error) {
	if _, err := w.ProcessExisting(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}

	// Backup polling in case file events are missed.
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event := <-fw.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !importable(event.Name) {
				continue
			}
			// Give the writer time to finish before reading.
			select {
			case <-time.After(w.cfg.SettleDelay):
			case <-ctx.Done():
				return ctx.Err()
			case <-w.stopChan:
				return nil
			}
			if err := w.processFile(ctx, event.Name); err != nil {
				log.Printf("watcher: failed to import %s: %v", event.Name, err)
			}
		case err := <-fw.Errors:
			log.Printf("watcher: file watcher error: %v", err)
		case <-ticker.C:
			if _, err := w.ProcessExisting(ctx); err != nil {
				log.Printf("watcher: rescan failed: %v", err)
			}
		}
	}
}

// Stop ends Run. Safe to call before Run.
func (w *Watcher) Stop() {
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}
}

// ProcessExisting imports every importable file already in the directory
// and reports how many files it handled.
func (w *Watcher) ProcessExisting(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read drop directory: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !importable(entry.Name()) {
			continue
		}
		path := filepath.Join(w.cfg.Dir, entry.Name())
		if err := w.processFile(ctx, path); err != nil {
			log.Printf("watcher: failed to import %s: %v", path, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// importable reports whether the file name looks like a decklist drop.
func importable(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".txt")
}

func (w *Watcher) processFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Picked up by both an event and a rescan.
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	// The file name marks where the cards physically live.
	location := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result, err := w.importer.Import(ctx, importer.Request{
		UserID:           w.cfg.UserID,
		Text:             string(data),
		PhysicalLocation: &location,
	})
	if err != nil {
		// Mark the file so a rescan does not retry a run that aborted,
		// then surface the original failure.
		if renameErr := os.Rename(path, path+".failed"); renameErr != nil {
			return fmt.Errorf("failed to mark file failed: %w (import error: %v)", renameErr, err)
		}
		return err
	}

	log.Printf("watcher: imported %s: %d added, %d failed",
		filepath.Base(path), result.Successes, result.Failures)
	for _, f := range result.FailureDetails {
		log.Printf("watcher:   %q: %s", f.Line, f.Reason)
	}

	if err := os.Rename(path, path+".done"); err != nil {
		return fmt.Errorf("failed to mark file done: %w", err)
	}
	return nil
}
