package scheduler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/color-game/contest/ledger"
)

// Exporter produces the full ledger export
type Exporter interface {
	ExportEntries(includeTags bool) ([]byte, error)
}

// Scheduler periodically writes ledger exports to a backup directory
type Scheduler struct {
	exporter Exporter
	dir      string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewScheduler(exporter Exporter, dir string, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Scheduler{
		exporter: exporter,
		dir:      dir,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs a backup every interval until Stop. A zero interval or an
// empty directory leaves the scheduler disabled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	if s.interval <= 0 || s.dir == "" {
		s.logger.Info("backup scheduler disabled")
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})
	s.running = true
	s.logger.Info("backup scheduler started", "dir", s.dir, "interval", s.interval.String())

	s.wg.Add(1)
	go func(ticks <-chan time.Time, done <-chan struct{}) {
		defer s.wg.Done()
		for {
			select {
			case <-ticks:
				if _, err := s.RunBackup(); err != nil {
					s.logger.Error("backup failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}(s.ticker.C, s.done)
}

// Stop halts the scheduler and waits for a running backup to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("backup scheduler stopped")
}

// RunBackup writes the full export, tags included, and returns its path
func (s *Scheduler) RunBackup() (string, error) {
	buf, err := s.exporter.ExportEntries(true)
	if err != nil {
		return "", fmt.Errorf("failed to export entries: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	path := filepath.Join(s.dir, ledger.ExportFilename(s.now()))
	tmp, err := os.CreateTemp(s.dir, ".backup-*")
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move backup into place: %w", err)
	}

	s.logger.Info("backup written", "path", path, "bytes", len(buf))
	return path, nil
}
