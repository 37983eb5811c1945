package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const settingsBucket = "settings"

// BoltStore keeps settings in a local bolt file. One writer at a time;
// the open timeout keeps a second process from hanging on the lock.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings: store path required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("settings: create dir %s: %w", dir, err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("settings: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(settingsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("settings: init bucket: %w", err)
	}
	log.Debug().Str("path", path).Msg("settings: store open")
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyRequired
	}
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket([]byte(settingsBucket)).Get([]byte(key)); raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("settings: load %s: %w", key, err)
	}
	return value, found, nil
}

func (s *BoltStore) Save(key, value string) error {
	if key == "" {
		return ErrKeyRequired
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("settings: save %s: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
