package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	bolt "go.etcd.io/bbolt"
)

// keyWidth pads numeric keys so bbolt's byte ordering matches numeric order.
const keyWidth = 20

// BoltStore keeps documents in an embedded bbolt file, one bucket per
// collection.
type BoltStore struct {
	db  *bolt.DB
	hub *Hub
	now func() time.Time
}

var _ Store = (*BoltStore)(nil)

func OpenBoltStore(file string) (*BoltStore, error) {
	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, unavailable(err)
	}
	s := &BoltStore{db: db, now: time.Now}
	s.hub = newHub(s.load)
	return s, nil
}

func (s *BoltStore) Hub() *Hub {
	return s.hub
}

func encodeKey(key string) []byte {
	if isDigits(key) && len(key) < keyWidth {
		return []byte(strings.Repeat("0", keyWidth-len(key)) + key)
	}
	return []byte(key)
}

func decodeKey(raw []byte) string {
	key := string(raw)
	if len(key) == keyWidth && isDigits(key) {
		trimmed := strings.TrimLeft(key, "0")
		if trimmed == "" {
			return "0"
		}
		return trimmed
	}
	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *BoltStore) encode(value interface{}) ([]byte, error) {
	return json.Marshal(resolveServerValues(value, domain.Millis(s.now())))
}

func (s *BoltStore) put(collection, key string, value interface{}) error {
	data, err := s.encode(value)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return b.Put(encodeKey(key), data)
	})
	if err != nil {
		return unavailable(err)
	}
	s.hub.Notify(collection)
	return nil
}

func (s *BoltStore) Push(ctx context.Context, path string, value interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	collection, key, err := splitPath(path)
	if err != nil {
		return "", err
	}
	if key != "" {
		return "", ErrInvalidPath
	}
	key = common.UUID()
	if err := s.put(collection, key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *BoltStore) Set(ctx context.Context, path string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, key, err := splitPath(path)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidPath
	}
	return s.put(collection, key, value)
}

func (s *BoltStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, key, err := splitPath(path)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		if key == "" {
			err := tx.DeleteBucket([]byte(collection))
			if errors.Is(err, bolt.ErrBucketNotFound) {
				return nil
			}
			return err
		}
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.Delete(encodeKey(key))
	})
	if err != nil {
		return unavailable(err)
	}
	s.hub.Notify(collection)
	return nil
}

func (s *BoltStore) Subscribe(path string, fn SnapshotFunc) (Unsubscribe, error) {
	collection, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if key != "" {
		return nil, ErrInvalidPath
	}
	return s.hub.Subscribe(collection, fn)
}

func (s *BoltStore) load(collection string) (Snapshot, error) {
	snap := Snapshot{Path: collection}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var value interface{}
			if err := json.Unmarshal(v, &value); err != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, decodeKey(k), err)
			}
			snap.Entries = append(snap.Entries, Entry{Key: decodeKey(k), Value: value})
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, unavailable(err)
	}
	return snap, nil
}

func (s *BoltStore) Close() error {
	s.hub.Close()
	return s.db.Close()
}
