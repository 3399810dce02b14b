package sync

import (
	"testing"
	"time"

	"github.com/tawasol-app/backend/internal/models"
)

func TestCachePut_MergesByID(t *testing.T) {
	c := NewCache()
	at := time.Now()
	c.Put(KindMessage, message("m1", 2, 1, "hi", false, at))
	c.Put(KindMessage, message("m1", 2, 1, "hi", false, at))

	if got := c.Len(KindMessage); got != 1 {
		t.Fatalf("expected one entry after double insert, got %d", got)
	}
}

func TestCachePut_OlderTimestampLoses(t *testing.T) {
	c := NewCache()
	at := time.Now()
	c.Put(KindMessage, message("m1", 2, 1, "newer", false, at))
	c.Put(KindMessage, message("m1", 2, 1, "stale", false, at.Add(-time.Minute)))

	e, ok := c.Get(KindMessage, "m1")
	if !ok {
		t.Fatal("entry missing")
	}
	if content := e.(*models.Message).Content; content != "newer" {
		t.Fatalf("stale write displaced newer entry: content = %q", content)
	}
}

func TestCachePut_EqualTimestampOverwrites(t *testing.T) {
	c := NewCache()
	at := time.Now()
	c.Put(KindMessage, message("m1", 2, 1, "hi", false, at))
	c.Put(KindMessage, message("m1", 2, 1, "hi", true, at)) // read-flag update

	e, _ := c.Get(KindMessage, "m1")
	if !e.(*models.Message).Read {
		t.Fatal("same-timestamp update was dropped; read flag not applied")
	}
}

func TestCacheNotifiesListeners(t *testing.T) {
	c := NewCache()
	var calls int
	c.OnChange(func(kind Kind, id string) {
		calls++
		if kind != KindMessage || id != "m1" {
			t.Fatalf("unexpected notification %s/%s", kind, id)
		}
	})

	c.Put(KindMessage, message("m1", 2, 1, "hi", false, time.Now()))
	c.Remove(KindMessage, "m1")
	c.Remove(KindMessage, "m1") // absent: no notification

	if calls != 2 {
		t.Fatalf("expected 2 listener calls, got %d", calls)
	}
}
