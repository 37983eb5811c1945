package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	testlog.Start(t)
	store := openTestStore(t)

	if _, found, err := store.Load(KeyAssetBaseURL); err != nil || found {
		t.Fatalf("fresh store must be empty: found=%v err=%v", found, err)
	}
	if err := store.Save(KeyAssetBaseURL, "https://cdn.example/assets"); err != nil {
		t.Fatalf("save: %v", err)
	}
	value, found, err := store.Load(KeyAssetBaseURL)
	if err != nil || !found || value != "https://cdn.example/assets" {
		t.Fatalf("load: (%q, %v, %v)", value, found, err)
	}

	if err := store.Save("", "x"); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("empty key must fail, got %v", err)
	}
}

func TestResolveOverlaysDefaults(t *testing.T) {
	testlog.Start(t)
	store := openTestStore(t)

	assets, err := Resolve(store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assets != DefaultAssets() {
		t.Fatalf("fresh store must resolve to defaults: %+v", assets)
	}

	if err := Apply(store, Assets{FlagBaseURL: "https://cdn.example/flags"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	assets, err = Resolve(store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assets.FlagBaseURL != "https://cdn.example/flags" {
		t.Fatalf("stored value must win: %+v", assets)
	}
	if assets.AssetBaseURL != DefaultAssets().AssetBaseURL {
		t.Fatalf("untouched key must keep its default: %+v", assets)
	}
}

func TestResolveWithoutStore(t *testing.T) {
	testlog.Start(t)
	assets, err := Resolve(nil)
	if err != nil || assets != DefaultAssets() {
		t.Fatalf("nil store must resolve defaults: (%+v, %v)", assets, err)
	}
	if err := Apply(nil, Assets{AssetBaseURL: "x"}); err != nil {
		t.Fatalf("nil store apply must be a no-op: %v", err)
	}
}
