package app

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("session")
	boltKey    = []byte("state")
)

// BoltStateStore keeps the snapshot in a bbolt bucket under a single key.
// Same slot semantics as FileStateStore, but crash-safe writes.
type BoltStateStore struct {
	db *bolt.DB
}

func NewBoltStateStore(path string) (*BoltStateStore, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(DefaultStateDir(), "state.db")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, errBucket := tx.CreateBucketIfNotExists(boltBucket)
		return errBucket
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStateStore{db: db}, nil
}

func (s *BoltStateStore) Load() (SessionState, error) {
	var state SessionState
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket == nil {
			return nil
		}
		data := bucket.Get(boltKey)
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, &state); err != nil {
			// Corrupt slot: degrade to empty, same as the file store.
			state = SessionState{}
		}
		return nil
	})
	if err != nil {
		return SessionState{}, err
	}
	return state, nil
}

func (s *BoltStateStore) Save(state SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(boltKey, payload)
	})
}

func (s *BoltStateStore) Close() error {
	return s.db.Close()
}
