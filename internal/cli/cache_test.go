package cli

import (
	"context"
	"testing"

	"github.com/matzehuels/photobooth/pkg/cache"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenFileCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, ok, err := openFileCache(); err != nil || ok {
		t.Fatalf("openFileCache() before first use = %v, %v; want not ok", ok, err)
	}

	c, err := newCache(false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if err := c.Set(context.Background(), "asset:k", []byte("png"), cache.AssetTTL); err != nil {
		t.Fatalf("Set: %v", err)
	}

	fc, ok, err := openFileCache()
	if err != nil || !ok {
		t.Fatalf("openFileCache() = %v, %v", ok, err)
	}
	if n, _, _ := fc.Stats(); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	if err := fc.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _, _ := fc.Stats(); n != 0 {
		t.Errorf("entries after Clear = %d, want 0", n)
	}
}
