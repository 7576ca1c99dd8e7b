package cache

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"
)

func newTestManager(t *testing.T, memoryItems int) *CacheManager {
	t.Helper()

	cm, err := NewCacheManager(&CacheConfig{
		Dir:              t.TempDir(),
		MemoryItems:      memoryItems,
		CompressionLevel: DefaultCompressionLevel,
	}, nil)
	if err != nil {
		t.Fatalf("NewCacheManager failed: %v", err)
	}
	t.Cleanup(func() { _ = cm.Close() })
	return cm
}

func TestCacheManager_SetGet(t *testing.T) {
	cm := newTestManager(t, 10)

	audio := []byte("mp3 bytes for great work")
	cm.Set("Great work!", audio)

	got, ok := cm.Get("great work!")
	if !ok {
		t.Fatal("Get after Set missed")
	}
	if !bytes.Equal(got, audio) {
		t.Errorf("Get = %q, want %q", got, audio)
	}

	// Written through to disk.
	if _, err := os.Stat(cm.cold.Path(KeyFor("Great work!"))); err != nil {
		t.Errorf("cold file missing after Set: %v", err)
	}

	stats := cm.Stats()
	if stats.HotHits != 1 || stats.ColdHits != 0 || stats.Misses != 0 {
		t.Errorf("stats = %+v, want one hot hit", stats)
	}
}

func TestCacheManager_Miss(t *testing.T) {
	cm := newTestManager(t, 10)

	if _, ok := cm.Get("never said"); ok {
		t.Fatal("Get on empty cache hit")
	}
	if cm.Contains("never said") {
		t.Error("Contains on empty cache returned true")
	}
	if cm.Stats().Misses != 1 {
		t.Errorf("Misses = %d, want 1", cm.Stats().Misses)
	}
}

func TestCacheManager_ColdHitPromotes(t *testing.T) {
	dir := t.TempDir()
	first, err := NewCacheManager(&CacheConfig{Dir: dir, MemoryItems: 10, CompressionLevel: DefaultCompressionLevel}, nil)
	if err != nil {
		t.Fatal(err)
	}
	first.Set("GO!", []byte("go audio"))
	_ = first.Close()

	// A fresh process starts with an empty hot table over the same directory.
	second, err := NewCacheManager(&CacheConfig{Dir: dir, MemoryItems: 10, CompressionLevel: DefaultCompressionLevel}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if second.hot.Contains(KeyFor("GO!")) {
		t.Fatal("hot table not empty on startup")
	}
	got, ok := second.Get("go!")
	if !ok || string(got) != "go audio" {
		t.Fatalf("Get = %q, %v; want cold hit", got, ok)
	}
	if !second.hot.Contains(KeyFor("GO!")) {
		t.Error("cold hit was not promoted into the hot table")
	}

	stats := second.Stats()
	if stats.ColdHits != 1 || stats.HotCount != 1 || stats.ColdCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheManager_OverflowFallsBackToCold(t *testing.T) {
	const capacity = 3
	cm := newTestManager(t, capacity)

	for i := 1; i <= capacity+1; i++ {
		cm.Set(fmt.Sprint(i), []byte(fmt.Sprintf("audio %d", i)))
	}

	if cm.hot.Contains(KeyFor("1")) {
		t.Fatal("first insertion still hot after overflow")
	}
	if cm.hot.Len() != capacity {
		t.Errorf("hot Len = %d, want %d", cm.hot.Len(), capacity)
	}

	got, ok := cm.Get("1")
	if !ok || string(got) != "audio 1" {
		t.Fatalf("Get(\"1\") = %q, %v; want cold hit", got, ok)
	}
	if cm.Stats().ColdHits != 1 {
		t.Errorf("ColdHits = %d, want 1", cm.Stats().ColdHits)
	}
	if cm.Stats().ColdCount != capacity+1 {
		t.Errorf("ColdCount = %d, want %d", cm.Stats().ColdCount, capacity+1)
	}
}

func TestCacheManager_CorruptFileIsMiss(t *testing.T) {
	cm := newTestManager(t, 10)

	path := cm.cold.Path(KeyFor("Keep it up!"))
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02}, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := cm.Get("Keep it up!"); ok {
		t.Fatal("corrupt file produced a hit")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt file was not removed")
	}

	stats := cm.Stats()
	if stats.Corrupted != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want one corrupted miss", stats)
	}
}

func TestCacheManager_SetSurvivesDiskFailure(t *testing.T) {
	cm := newTestManager(t, 10)

	// Replace the directory with a file so every cold write fails.
	dir := cm.Dir()
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	cm.Set("Stay strong!", []byte("audio"))

	got, ok := cm.Get("Stay strong!")
	if !ok || string(got) != "audio" {
		t.Fatalf("Get after failed disk write = %q, %v; want hot hit", got, ok)
	}
	if cm.Stats().WriteFailures != 1 {
		t.Errorf("WriteFailures = %d, want 1", cm.Stats().WriteFailures)
	}
}

func TestCacheManager_Contains(t *testing.T) {
	cm := newTestManager(t, 1)

	cm.Set("one", []byte("1"))
	cm.Set("two", []byte("2")) // evicts "one" from the hot table

	if !cm.Contains("ONE") {
		t.Error("Contains missed a cold-only entry")
	}
	if cm.hot.Contains(KeyFor("one")) {
		t.Error("Contains promoted a cold entry")
	}
}

func TestCacheManager_Clear(t *testing.T) {
	cm := newTestManager(t, 10)

	for _, phrase := range []string{"1", "2", "GO!"} {
		cm.Set(phrase, []byte(phrase))
	}

	if err := cm.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats := cm.Stats()
	if stats.HotCount != 0 || stats.ColdCount != 0 || stats.TotalColdBytes != 0 {
		t.Errorf("stats after Clear = %+v", stats)
	}
	if _, ok := cm.Get("GO!"); ok {
		t.Error("Get hit after Clear")
	}
}

func TestCacheManager_WatcherDropsRemovedEntries(t *testing.T) {
	cm, err := NewCacheManager(&CacheConfig{
		Dir:              t.TempDir(),
		MemoryItems:      10,
		CompressionLevel: DefaultCompressionLevel,
		Watch:            true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cm.Close()
	if cm.watcher == nil {
		t.Skip("fsnotify unavailable on this platform")
	}

	cm.Set("Move it!", []byte("audio"))
	key := KeyFor("Move it!")
	if !cm.hot.Contains(key) {
		t.Fatal("entry not hot after Set")
	}

	if err := os.Remove(cm.cold.Path(key)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for cm.hot.Contains(key) {
		if time.Now().After(deadline) {
			t.Fatal("hot entry not dropped after cold file removal")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
