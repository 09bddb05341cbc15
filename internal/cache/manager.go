package cache

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Manager layers the memory cache over the disk cache. Disk hits are
// promoted to memory. It satisfies tts.AudioCache.
type Manager struct {
	l1 *MemoryCache
	l2 *DiskCache // nil without a disk path

	logger *log.Logger

	mu    sync.Mutex
	stats struct {
		L1Hits     int64
		L2Hits     int64
		Misses     int64
		Promotions int64
	}
}

// NewManager creates a cache from cfg. An empty DiskPath keeps the cache
// in memory only.
func NewManager(cfg Config, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = log.Default()
	}

	m := &Manager{
		l1:     NewMemoryCache(cfg.MemoryCapacity),
		logger: logger,
	}

	if cfg.DiskPath != "" && cfg.DiskCapacity > 0 {
		l2, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.l2 = l2
	}

	return m, nil
}

// Get checks memory, then disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.l1.Get(key); ok {
		m.count(func() { m.stats.L1Hits++ })
		return data, true
	}

	if m.l2 != nil {
		if data, ok := m.l2.Get(key); ok {
			m.count(func() {
				m.stats.L2Hits++
				m.stats.Promotions++
			})
			if err := m.l1.Put(key, data); err != nil {
				m.logger.Debug("Audio not promoted to memory", "err", err)
			}
			return data, true
		}
	}

	m.count(func() { m.stats.Misses++ })
	return nil, false
}

// Put stores value in both levels. Audio too large for memory still goes
// to disk.
func (m *Manager) Put(key string, value []byte) error {
	memErr := m.l1.Put(key, value)
	if m.l2 == nil {
		return memErr
	}
	if err := m.l2.Put(key, value); err != nil {
		return err
	}
	return nil
}

// Stats returns per-level statistics.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.Lock()
	stats := map[string]interface{}{
		"l1_hits":    m.stats.L1Hits,
		"l2_hits":    m.stats.L2Hits,
		"misses":     m.stats.Misses,
		"promotions": m.stats.Promotions,
	}
	m.mu.Unlock()

	stats[CacheLevelL1.String()] = m.l1.Stats()
	if m.l2 != nil {
		stats[CacheLevelL2.String()] = m.l2.Stats()
	}
	return stats
}

// Close flushes the disk index.
func (m *Manager) Close() error {
	if m.l2 == nil {
		return nil
	}
	return m.l2.Close()
}

func (m *Manager) count(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
