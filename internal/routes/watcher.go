package routes

import (
	"context"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Watcher polls a route file and hands every valid new table to Apply.
// On any error the active table is left alone.
type Watcher struct {
	Path     string
	Interval time.Duration
	Apply    func([]Rule) error
	Logger   hclog.Logger

	lastMod time.Time
	missing bool
}

// Run polls until ctx is done. The file's state at start counts as
// already applied.
func (w *Watcher) Run(ctx context.Context) {
	if w.Logger == nil {
		w.Logger = hclog.NewNullLogger()
	}
	if info, err := os.Stat(w.Path); err == nil {
		w.lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll reports whether a new table was applied.
func (w *Watcher) poll() bool {
	info, err := os.Stat(w.Path)
	if err != nil {
		if !w.missing {
			w.Logger.Warn("route file unavailable, keeping active routes", "path", w.Path, "error", err)
			w.missing = true
		}
		return false
	}
	w.missing = false

	if !info.ModTime().After(w.lastMod) {
		return false
	}
	// Recorded even on failure so a broken file is reported once, not every tick.
	w.lastMod = info.ModTime()

	rules, err := LoadFile(w.Path)
	if err != nil {
		w.Logger.Error("route reload failed, keeping active routes", "path", w.Path, "error", err)
		return false
	}

	if err := w.Apply(rules); err != nil {
		w.Logger.Error("route reload rejected", "path", w.Path, "error", err)
		return false
	}

	w.Logger.Info("routes reloaded", "path", w.Path, "routes", len(rules))
	return true
}
