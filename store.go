package brickfolio

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"time"

	"github.com/brickfolio/brickfolio/schema"
	bolt "go.etcd.io/bbolt"
)

const (
	boltAllocSize = 8 * 1024 * 1024

	boltName = "brickfolio.db"
)

// Store is the bolt-backed warm-start KV. It holds the last good catalog
// snapshot so a restart can serve stale-but-valid data before the first
// ledger round trip completes; the ledger stays the source of truth.
type Store struct {
	BoltDb *bolt.DB
}

func NewStore(dirPath string) (*Store, error) {
	if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
		return nil, err
	}

	boltDB, err := bolt.Open(path.Join(dirPath, boltName), 0660, &bolt.Options{Timeout: 1 * time.Second, InitialMmapSize: 10e6})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	boltDB.AllocSize = boltAllocSize

	kv := &Store{
		BoltDb: boltDB,
	}

	if err := kv.BoltDb.Update(func(tx *bolt.Tx) error {
		return createBuckets(tx, schema.BucketCatalog, schema.BucketMeta)
	}); err != nil {
		return nil, err
	}

	return kv, nil
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bkt := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bkt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.BoltDb.Close()
}

func (s *Store) SaveCatalogSnapshot(properties []schema.Property) error {
	by, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	return s.BoltDb.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(schema.BucketCatalog)
		if err := bkt.Put(schema.KeyCatalog, by); err != nil {
			return err
		}
		ts, _ := time.Now().UTC().MarshalBinary()
		return tx.Bucket(schema.BucketMeta).Put(schema.KeyLoadedAt, ts)
	})
}

func (s *Store) LoadCatalogSnapshot() ([]schema.Property, error) {
	var by []byte
	err := s.BoltDb.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(schema.BucketCatalog).Get(schema.KeyCatalog)
		if val == nil {
			return schema.ErrNotFound
		}
		by = make([]byte, len(val))
		copy(by, val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	properties := make([]schema.Property, 0)
	if err := json.Unmarshal(by, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (s *Store) SnapshotTime() (time.Time, error) {
	var ts time.Time
	err := s.BoltDb.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(schema.BucketMeta).Get(schema.KeyLoadedAt)
		if val == nil {
			return schema.ErrNotFound
		}
		return ts.UnmarshalBinary(val)
	})
	return ts, err
}
