package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lhaig/fun/internal/config"
	"github.com/lhaig/fun/internal/interp"
)

// settleDelay lets an editor finish writing before the file is re-read.
const settleDelay = 50 * time.Millisecond

// watch runs filePath once and again after every change to a .fun file in
// its directory, until ctx is done. Editors often replace files instead of
// writing them, so the directory is watched rather than the file.
func (c *cli) watch(ctx context.Context, filePath string, cfg *config.Config) int {
	logger := cfg.Logger(c.stderr)
	opts := options(cfg, logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return exitError
	}
	defer watcher.Close()

	dir := filepath.Dir(filePath)
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(c.stderr, "Error: cannot watch %s: %s\n", dir, err)
		return exitError
	}

	rerun := func() {
		c.report(interp.Run(ctx, filePath, opts), false)
		fmt.Fprintf(c.stderr, "-- watching %s (Ctrl-C to stop)\n", displayName(dir))
	}
	rerun()

	for {
		select {
		case <-ctx.Done():
			return exitOK
		case ev, ok := <-watcher.Events:
			if !ok {
				return exitOK
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("change detected", "file", displayName(ev.Name), "op", ev.Op.String())
			settle(ctx, watcher.Events)
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return exitOK
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, interp.SourceExt) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// settle waits for a quiet period, dropping the burst of events a single
// save tends to produce.
func settle(ctx context.Context, events <-chan fsnotify.Event) {
	timer := time.NewTimer(settleDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			timer.Reset(settleDelay)
		case <-timer.C:
			return
		}
	}
}
