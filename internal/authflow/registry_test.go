package authflow

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryInsertGetRemove(t *testing.T) {
	registry := NewRegistry(time.Hour)
	defer registry.Close()

	if registry.Get(42) != nil {
		t.Error("Get on empty registry returned a session")
	}

	registry.Insert(&Session{UserID: 42, DeviceCode: "D1"})
	if got := registry.Get(42); got == nil || got.DeviceCode != "D1" {
		t.Fatalf("Get = %+v, want device code D1", got)
	}

	if !registry.Remove(42) {
		t.Error("Remove did not report an existing session")
	}
	if registry.Remove(42) {
		t.Error("second Remove reported a session")
	}
	if registry.Get(42) != nil {
		t.Error("session still present after Remove")
	}
}

func TestRegistryInsertOverwrites(t *testing.T) {
	registry := NewRegistry(time.Hour)
	defer registry.Close()

	registry.Insert(&Session{UserID: 42, DeviceCode: "D1"})
	registry.Insert(&Session{UserID: 42, DeviceCode: "D2"})

	if got := registry.Get(42).DeviceCode; got != "D2" {
		t.Errorf("device code = %q, want D2", got)
	}
	if registry.Len() != 1 {
		t.Errorf("Len = %d, want 1", registry.Len())
	}
}

func TestRegistryKeepsLapsedSessionWithinRetention(t *testing.T) {
	registry := NewRegistry(time.Hour)
	defer registry.Close()

	// Logically expired, but still within the registry's retention window:
	// the flow must be able to read it to report "expired" instead of
	// "not found".
	registry.Insert(&Session{
		UserID:    42,
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	if registry.Get(42) == nil {
		t.Error("lapsed session evicted before its retention window")
	}
}

func TestRegistryConcurrentRemoveReportsOnce(t *testing.T) {
	registry := NewRegistry(time.Hour)
	defer registry.Close()

	registry.Insert(&Session{UserID: 42, DeviceCode: "D1"})

	var removed atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if registry.Remove(42) {
				removed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := removed.Load(); got != 1 {
		t.Errorf("removals observed = %d, want exactly 1", got)
	}
}

func TestRegistryIsolatesUsers(t *testing.T) {
	registry := NewRegistry(time.Hour)
	defer registry.Close()

	registry.Insert(&Session{UserID: 1, DeviceCode: "D1"})
	registry.Insert(&Session{UserID: 2, DeviceCode: "D2"})

	registry.Remove(1)
	if got := registry.Get(2); got == nil || got.DeviceCode != "D2" {
		t.Errorf("removing user 1 disturbed user 2: %+v", got)
	}
}
