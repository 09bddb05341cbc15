package cache

import (
	"bytes"
	"testing"
)

func TestManager_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{MemoryCapacity: 1 << 20, DiskCapacity: 1 << 20, DiskPath: dir, CompressionLevel: 3}

	m, err := NewManager(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	value := pcmLike(2048)
	if err := m.Put("k", value); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	// A fresh manager has an empty memory level but the same disk.
	m, err = NewManager(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	got, ok := m.Get("k")
	if !ok || !bytes.Equal(got, value) {
		t.Fatalf("Get() returned %d bytes, ok=%v", len(got), ok)
	}
	if _, ok := m.Get("k"); !ok {
		t.Fatal("second Get() should hit")
	}

	stats := m.Stats()
	if stats["l2_hits"] != int64(1) || stats["l1_hits"] != int64(1) || stats["promotions"] != int64(1) {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("k"); !ok {
		t.Error("memory-only cache should hit")
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("unexpected hit")
	}
	if err := m.Put("big", make([]byte, 20)); err == nil {
		t.Error("memory-only cache should reject oversized audio")
	}
	if _, ok := m.Stats()[CacheLevelL2.String()]; ok {
		t.Error("memory-only cache should not report L2 stats")
	}
}

func TestManager_LargeAudioGoesToDisk(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 10, DiskCapacity: 1 << 20, DiskPath: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Put("big", make([]byte, 100)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := m.Get("big"); !ok {
		t.Error("large audio should be served from disk")
	}
}
