// Package artifact bounds the disk usage of the generated-font output
// directory by age, count, and total size.
package artifact

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Manager enforces lifecycle policies on a single flat output directory.
// The directory may be mutated concurrently by converters; deletion races
// degrade to logged per-file warnings, never a failure of the sweep.
type Manager struct {
	dir      string
	maxAge   time.Duration
	maxCount int
	maxBytes int64
	logger   *slog.Logger

	now      func() time.Time
	removeFn func(string) error
}

// Config holds the lifecycle bounds for a Manager.
type Config struct {
	Dir      string
	MaxAge   time.Duration
	MaxCount int
	MaxBytes int64
}

// SweepResult aggregates the per-policy removal counts of one full sweep.
// Failed counts files a policy selected but could not delete; those stay
// on disk for the next tick.
type SweepResult struct {
	OldRemoved    int `json:"oldRemoved"`
	ExcessRemoved int `json:"excessRemoved"`
	SizeRemoved   int `json:"sizeRemoved"`
	Failed        int `json:"failed"`
	Total         int `json:"total"`
}

type fileEntry struct {
	path    string
	modTime time.Time
	size    int64
}

// NewManager creates a lifecycle manager for the configured directory.
func NewManager(config Config) *Manager {
	if config.MaxAge <= 0 {
		config.MaxAge = 24 * time.Hour
	}
	if config.MaxCount <= 0 {
		config.MaxCount = 1000
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = 500 * 1024 * 1024
	}
	return &Manager{
		dir:      config.Dir,
		maxAge:   config.MaxAge,
		maxCount: config.MaxCount,
		maxBytes: config.MaxBytes,
		logger:   slog.Default(),
		now:      time.Now,
		removeFn: os.Remove,
	}
}

// SetLogger sets a custom logger.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Dir returns the managed directory.
func (m *Manager) Dir() string {
	return m.dir
}

// listFiles returns the regular files in the managed directory. A missing
// directory yields an empty list; a stat failure for one entry is logged
// and the entry skipped.
func (m *Manager) listFiles() []fileEntry {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to read artifact directory", "dir", m.dir, "error", err)
		}
		return nil
	}

	files := make([]fileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			m.logger.Warn("failed to stat artifact", "path", filepath.Join(m.dir, de.Name()), "error", err)
			continue
		}
		files = append(files, fileEntry{
			path:    filepath.Join(m.dir, de.Name()),
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	return files
}

// remove deletes one file, logging a warning on failure. Returns whether
// the file was removed.
func (m *Manager) remove(path string) bool {
	if err := m.removeFn(path); err != nil {
		m.logger.Warn("failed to remove artifact", "path", path, "error", err)
		return false
	}
	m.logger.Debug("removed artifact", "path", path)
	return true
}

// EvictOlderThan removes every file older than maxAge and returns the
// number removed.
func (m *Manager) EvictOlderThan(maxAge time.Duration) int {
	removed, _ := m.evictOlderThan(maxAge)
	return removed
}

func (m *Manager) evictOlderThan(maxAge time.Duration) (removed, failed int) {
	now := m.now()
	for _, f := range m.listFiles() {
		if now.Sub(f.modTime) > maxAge {
			if m.remove(f.path) {
				removed++
			} else {
				failed++
			}
		}
	}
	if removed > 0 {
		m.logger.Info("evicted old artifacts", "dir", m.dir, "count", removed)
	}
	return removed, failed
}

// EvictExcessCount removes the oldest files by modification time until at
// most maxCount remain, returning the number removed.
func (m *Manager) EvictExcessCount(maxCount int) int {
	removed, _ := m.evictExcessCount(maxCount)
	return removed
}

func (m *Manager) evictExcessCount(maxCount int) (removed, failed int) {
	files := m.listFiles()
	if len(files) <= maxCount {
		return 0, 0
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files[:len(files)-maxCount] {
		if m.remove(f.path) {
			removed++
		} else {
			failed++
		}
	}
	if removed > 0 {
		m.logger.Info("evicted excess artifacts", "dir", m.dir, "count", removed)
	}
	return removed, failed
}

// DirectorySize returns the total size of the managed directory in bytes.
// A missing directory yields 0.
func (m *Manager) DirectorySize() int64 {
	var total int64
	for _, f := range m.listFiles() {
		total += f.size
	}
	return total
}

// EvictForSizeBudget removes oldest files first until the directory size
// is at or below maxBytes, returning the number removed. When the budget
// is unreachable it stops after the list is exhausted.
func (m *Manager) EvictForSizeBudget(maxBytes int64) int {
	removed, _ := m.evictForSizeBudget(maxBytes)
	return removed
}

func (m *Manager) evictForSizeBudget(maxBytes int64) (removed, failed int) {
	files := m.listFiles()
	var currentSize int64
	for _, f := range files {
		currentSize += f.size
	}
	if currentSize <= maxBytes {
		return 0, 0
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	var freed int64
	for _, f := range files {
		if currentSize-freed <= maxBytes {
			break
		}
		if m.remove(f.path) {
			removed++
			freed += f.size
		} else {
			failed++
		}
	}
	if removed > 0 {
		m.logger.Info("evicted artifacts for size budget", "dir", m.dir, "count", removed, "freed_bytes", freed)
	}
	return removed, failed
}

// FullSweep runs the age, count, and size policies in that fixed order and
// returns the aggregate counts. Each policy runs unconditionally; a sweep
// of an already-compliant or missing directory removes nothing.
func (m *Manager) FullSweep() SweepResult {
	result := SweepResult{}
	var failed int
	result.OldRemoved, failed = m.evictOlderThan(m.maxAge)
	result.Failed += failed
	result.ExcessRemoved, failed = m.evictExcessCount(m.maxCount)
	result.Failed += failed
	result.SizeRemoved, failed = m.evictForSizeBudget(m.maxBytes)
	result.Failed += failed
	result.Total = result.OldRemoved + result.ExcessRemoved + result.SizeRemoved

	if result.Total > 0 || result.Failed > 0 {
		m.logger.Info("artifact sweep completed",
			"dir", m.dir,
			"old", result.OldRemoved,
			"excess", result.ExcessRemoved,
			"size", result.SizeRemoved,
			"failed", result.Failed,
			"total", result.Total)
	}
	return result
}
