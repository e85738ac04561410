package cache

import (
	"path/filepath"
	"testing"
	"time"

	"mallscout/pkg/models"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t, time.Minute)

	listings := []models.Listing{
		{ProductName: "제주 삼다수 2L", Price: 12980, Mall: models.MallCoupang, ProductURL: "https://www.coupang.com/vp/products/1"},
	}
	store.Set(models.MallCoupang, "삼다수", listings)

	got, ok := store.Get(models.MallCoupang, "삼다수")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ProductName != "제주 삼다수 2L" || got[0].Price != 12980 {
		t.Errorf("got %+v", got)
	}

	// Other malls and keywords miss.
	if _, ok := store.Get(models.MallNaver, "삼다수"); ok {
		t.Error("hit for wrong mall")
	}
	if _, ok := store.Get(models.MallCoupang, "생수"); ok {
		t.Error("hit for wrong keyword")
	}
}

func TestStore_EmptyResultIsAHit(t *testing.T) {
	store := newTestStore(t, time.Minute)
	store.Set(models.MallNaver, "없는상품", []models.Listing{})

	got, ok := store.Get(models.MallNaver, "없는상품")
	if !ok {
		t.Fatal("cached empty result should still hit")
	}
	if len(got) != 0 {
		t.Errorf("got %d listings, want 0", len(got))
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	store := newTestStore(t, 10*time.Millisecond)
	store.Set(models.MallElevenst, "콜라", []models.Listing{{ProductName: "콜라", Price: 1000, Mall: models.MallElevenst}})

	time.Sleep(30 * time.Millisecond)

	if _, ok := store.Get(models.MallElevenst, "콜라"); ok {
		t.Error("expired entry must miss")
	}
}

func TestStore_Overwrite(t *testing.T) {
	store := newTestStore(t, time.Minute)
	store.Set(models.MallCoupang, "콜라", []models.Listing{{ProductName: "old", Price: 1, Mall: models.MallCoupang}})
	store.Set(models.MallCoupang, "콜라", []models.Listing{{ProductName: "new", Price: 2, Mall: models.MallCoupang}})

	got, ok := store.Get(models.MallCoupang, "콜라")
	if !ok || len(got) != 1 || got[0].ProductName != "new" {
		t.Errorf("got %+v, want the overwritten entry", got)
	}
}
