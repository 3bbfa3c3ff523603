package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"giftem/pkg/domain"
)

const sampleSeed = `
currentUserId: u1
users:
  - id: u1
    username: ada
    displayName: Ada
  - id: u2
    username: grace
    displayName: Grace
products:
  - id: p1
    name: Rubber Duck
    description: Nice rubber duck.
    price: 4.99
    originalPrice: 7.99
    imageUrls: [duck]
    category: toys
    sellerId: my-store
    rating: 4.8
    reviewCount: 234
    tags: [duck, bath]
  - name: Kite
    description: Flies high.
    price: 12
    imageUrls: [kite]
    category: sports
    rating: 4
conversations:
  - id: c1
    participants: [u1, u2]
    messages:
      - senderId: u2
        body: still available?
        createdAt: 2025-09-20T10:00:00Z
`

func TestParse(t *testing.T) {
	data, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if data.CurrentUserID != "u1" || len(data.Users) != 2 {
		t.Fatalf("unexpected users: %+v", data)
	}
	if len(data.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(data.Products))
	}
	duck := data.Products[0]
	if duck.Category != domain.CategoryToys || duck.OriginalPrice == nil || *duck.OriginalPrice != 7.99 {
		t.Fatalf("unexpected duck: %+v", duck)
	}
	if data.Products[1].OriginalPrice != nil {
		t.Fatalf("kite should have no original price")
	}
	c := data.Conversations[0]
	if c.Participants != [2]string{"u1", "u2"} || len(c.Messages) != 1 {
		t.Fatalf("unexpected conversation: %+v", c)
	}
	if want := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC); !c.Messages[0].CreatedAt.Equal(want) {
		t.Fatalf("message time = %v, want %v", c.Messages[0].CreatedAt, want)
	}
}

func TestValidateRejectsBadSeed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Data)
		want   string
	}{
		{name: "unknown category", mutate: func(d *Data) { d.Products[0].Category = "garden" }, want: "unknown category"},
		{name: "negative price", mutate: func(d *Data) { d.Products[0].Price = -1 }, want: "price must be >= 0"},
		{name: "rating too high", mutate: func(d *Data) { d.Products[0].Rating = 5.5 }, want: "rating"},
		{name: "no images", mutate: func(d *Data) { d.Products[0].ImageURLs = nil }, want: "image"},
		{name: "duplicate product", mutate: func(d *Data) { d.Products[1].ID = d.Products[0].ID }, want: "duplicate id"},
		{name: "unknown viewer", mutate: func(d *Data) { d.CurrentUserID = "ghost" }, want: "currentUserId"},
		{name: "outsider participant", mutate: func(d *Data) { d.Conversations[0].Participants[1] = "ghost" }, want: "seeded users"},
		{name: "self conversation", mutate: func(d *Data) { d.Conversations[0].Participants[1] = "u1" }, want: "must differ"},
		{name: "sender outside conversation", mutate: func(d *Data) { d.Conversations[0].Messages[0].SenderID = "ghost" }, want: "sender"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Parse([]byte(sampleSeed))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tc.mutate(&data)
			err = data.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	data := Default(time.Now())
	if err := data.Validate(); err != nil {
		t.Fatalf("default seed invalid: %v", err)
	}
	if len(data.Products) != 3 {
		t.Fatalf("default products = %d, want 3", len(data.Products))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(sampleSeed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	reloaded := make(chan Data, 4)
	w, err := NewWatcher(WatcherConfig{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		OnChange: func(d Data) { reloaded <- d },
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// An invalid write must be skipped.
	if err := os.WriteFile(path, []byte("products: [{name: x, category: garden}]"), 0o644); err != nil {
		t.Fatalf("write invalid seed: %v", err)
	}
	updated := strings.Replace(sampleSeed, "name: Kite", "name: Box Kite", 1)
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write updated seed: %v", err)
	}

	select {
	case d := <-reloaded:
		if d.Products[1].Name != "Box Kite" {
			t.Fatalf("reloaded product = %q, want Box Kite", d.Products[1].Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}
}

func TestNewWatcherRequiresCallback(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{Path: filepath.Join(t.TempDir(), "seed.yaml")}); err == nil {
		t.Fatalf("expected error without OnChange")
	}
}
