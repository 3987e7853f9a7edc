package cache

import (
	"testing"
	"time"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

func page(url, body string) *models.Page {
	return &models.Page{URL: url, StatusCode: 200, Body: body, FetchedAt: time.Now()}
}

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache(1024 * 1024)
	defer mc.Close()

	key := RequestKey("GET", "https://portal.example.edu/search", nil)
	if err := mc.Set(key, page("https://portal.example.edu/search", "<html>subjects</html>"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := mc.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Body != "<html>subjects</html>" {
		t.Errorf("unexpected body: %q", got.Body)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache(1024 * 1024)
	defer mc.Close()

	key := "GET https://portal.example.edu/x"
	mc.Set(key, page("x", "body"), 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	if _, ok := mc.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	// Budget fits roughly two entries (each ~1KB overhead + body)
	mc := NewMemoryCache(2600)
	defer mc.Close()

	mc.Set("a", page("a", "111"), time.Minute)
	mc.Set("b", page("b", "222"), time.Minute)

	// Touch "a" so "b" is the LRU candidate
	mc.Get("a")

	mc.Set("c", page("c", "333"), time.Minute)

	if _, ok := mc.Get("b"); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	if _, ok := mc.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	mc := NewMemoryCache(1024 * 1024)
	defer mc.Close()

	mc.Set("k", page("k", "body"), time.Minute)
	mc.Clear()

	if _, ok := mc.Get("k"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestRequestKey_FormDigest(t *testing.T) {
	url := "https://portal.example.edu/search"

	plain := RequestKey("GET", url, nil)
	if plain != "GET "+url {
		t.Errorf("unexpected plain key: %q", plain)
	}

	a := RequestKey("POST", url, map[string]string{"ICAction": "PTS_SELECT$1", "PTS_SELECT$1": "Y"})
	b := RequestKey("POST", url, map[string]string{"ICAction": "PTS_SELECT$2", "PTS_SELECT$2": "Y"})
	if a == b {
		t.Error("different forms must produce different keys")
	}

	// Key must be stable regardless of map iteration order
	c := RequestKey("POST", url, map[string]string{"PTS_SELECT$1": "Y", "ICAction": "PTS_SELECT$1"})
	if a != c {
		t.Errorf("same form should produce same key: %q vs %q", a, c)
	}
}
