package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/geekfeed/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	collectionPrefix = "collection:"
	sequenceKeyBytes = 8
)

// boltStore implements a Store backed by BoltDB, one bucket per collection.
type boltStore struct {
	db       *bolt.DB
	maxItems int
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	return &boltStore{db: db, maxItems: opts.MaxItemsPerCollection}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Items returns up to limit items of a collection in insertion order. An
// unknown collection yields an empty slice.
func (b *boltStore) Items(collection string, limit int) ([]domain.RawItem, error) {
	items := []domain.RawItem{}
	if b == nil || b.db == nil || limit <= 0 {
		return items, nil
	}

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName(collection))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(items) < limit; k, v = cursor.Next() {
			var item domain.RawItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode item %d in %q: %w", decodeSequence(k), collection, err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PutItems appends items to a collection, then trims the oldest entries past the retention cap.
func (b *boltStore) PutItems(collection string, items []domain.RawItem) error {
	if b == nil || b.db == nil {
		return nil
	}
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("collection name is empty")
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName(collection))
		if err != nil {
			return fmt.Errorf("init bucket: %w", err)
		}

		for _, item := range items {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			value, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encode item %q: %w", item.ID, err)
			}
			if err := bucket.Put(encodeSequence(seq), value); err != nil {
				return err
			}
		}

		return trimOldest(bucket, b.maxItems)
	})
}

// trimOldest deletes from the front of the bucket until at most keep keys remain.
func trimOldest(bucket *bolt.Bucket, keep int) error {
	if keep <= 0 {
		return nil
	}

	count := 0
	cursor := bucket.Cursor()
	for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
		count++
	}

	for excess := count - keep; excess > 0; excess-- {
		k, _ := cursor.First()
		if k == nil {
			break
		}
		if err := cursor.Delete(); err != nil {
			return err
		}
	}
	return nil
}

func bucketName(collection string) []byte {
	return []byte(collectionPrefix + strings.ToLower(strings.TrimSpace(collection)))
}

func encodeSequence(seq uint64) []byte {
	buf := make([]byte, sequenceKeyBytes)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func decodeSequence(key []byte) uint64 {
	if len(key) != sequenceKeyBytes {
		return 0
	}
	return binary.BigEndian.Uint64(key)
}
