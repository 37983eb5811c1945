// Package settings persists operator-facing display configuration.
// The core never reads the store directly; the web layer resolves
// settings into the payloads the UI consumes.
package settings

import "errors"

var ErrKeyRequired = errors.New("settings: key required")

// Store is the narrow persistence contract. Load's second return
// reports whether the key was present.
type Store interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Close() error
}

// Keys for the asset configuration the UI resolves at startup.
const (
	KeyAssetBaseURL = "asset_base_url"
	KeyFlagBaseURL  = "flag_base_url"
)

// Assets is the resolved asset configuration.
type Assets struct {
	AssetBaseURL string `json:"asset_base_url"`
	FlagBaseURL  string `json:"flag_base_url"`
}

// DefaultAssets returns the paths served by the scoreboard itself.
func DefaultAssets() Assets {
	return Assets{
		AssetBaseURL: "/assets",
		FlagBaseURL:  "/assets/flags",
	}
}

// Resolve overlays stored values on the defaults. A nil store resolves
// to the defaults.
func Resolve(store Store) (Assets, error) {
	out := DefaultAssets()
	if store == nil {
		return out, nil
	}
	if v, ok, err := store.Load(KeyAssetBaseURL); err != nil {
		return out, err
	} else if ok {
		out.AssetBaseURL = v
	}
	if v, ok, err := store.Load(KeyFlagBaseURL); err != nil {
		return out, err
	} else if ok {
		out.FlagBaseURL = v
	}
	return out, nil
}

// Apply persists the non-empty fields of a. Empty fields leave the
// stored value alone.
func Apply(store Store, a Assets) error {
	if store == nil {
		return nil
	}
	if a.AssetBaseURL != "" {
		if err := store.Save(KeyAssetBaseURL, a.AssetBaseURL); err != nil {
			return err
		}
	}
	if a.FlagBaseURL != "" {
		if err := store.Save(KeyFlagBaseURL, a.FlagBaseURL); err != nil {
			return err
		}
	}
	return nil
}
