package repositories

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// Bucket names of the embedded store.
const (
	tournamentsBucket  = "tournaments"
	entriesBucket      = "entries"       // tournamentID|entryID -> entry
	entryPlayersBucket = "entry_players" // tournamentID|playerID -> entryID
	sessionsBucket     = "sessions"
	handsBucket        = "hands" // sessionID|handNumber -> hand
	playersBucket      = "players"
)

var boltBuckets = []string{
	tournamentsBucket, entriesBucket, entryPlayersBucket, sessionsBucket, handsBucket, playersBucket,
}

// BoltStore is a single-file Store backed by bbolt. Writes are serialized by
// bbolt's single writer, which makes every Atomic unit linearizable.
type BoltStore struct {
	db *bbolt.DB
	tx *bbolt.Tx // set while inside Atomic
}

// NewBoltStore opens (or creates) the database at dbPath and makes sure every
// bucket exists.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range boltBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Tournaments() TournamentRepository {
	return &boltTournamentRepository{store: s}
}

func (s *BoltStore) Entries() EntryRepository {
	return &boltEntryRepository{store: s}
}

func (s *BoltStore) Sessions() SessionRepository {
	return &boltSessionRepository{store: s}
}

func (s *BoltStore) Players() PlayerRepository {
	return &boltPlayerRepository{store: s}
}

func (s *BoltStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&BoltStore{db: s.db, tx: tx})
	})
}

func (s *BoltStore) Close() error {
	if s.tx != nil {
		return nil
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) view(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *BoltStore) update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func compositeKey(prefix int64, suffix []byte) []byte {
	return append(itob(prefix), suffix...)
}

func putJSON(b *bbolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return b.Put(key, data)
}

// getJSON reports false when key is absent.
func getJSON(b *bbolt.Bucket, key []byte, v interface{}) (bool, error) {
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

// forEachPrefix visits every key in b starting with prefix.
func forEachPrefix(b *bbolt.Bucket, prefix []byte, fn func(k, v []byte) error) error {
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
