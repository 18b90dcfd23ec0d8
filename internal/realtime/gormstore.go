package realtime

import (
	"context"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GormStore keeps documents in the rt_node table of a relational database.
type GormStore struct {
	db  *gorm.DB
	hub *Hub
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore returns a store over db. The rt_node table must already be
// migrated (see domain.Tables).
func NewGormStore(db *gorm.DB) *GormStore {
	s := &GormStore{db: db, now: time.Now}
	s.hub = newHub(s.load)
	return s
}

// Hub exposes the change fan-out of the store.
func (s *GormStore) Hub() *Hub {
	return s.hub
}

func (s *GormStore) encode(value interface{}) (string, error) {
	resolved := resolveServerValues(value, domain.Millis(s.now()))
	data, err := json.Marshal(resolved)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *GormStore) Push(ctx context.Context, path string, value interface{}) (string, error) {
	collection, key, err := splitPath(path)
	if err != nil {
		return "", err
	}
	if key != "" {
		return "", ErrInvalidPath
	}
	data, err := s.encode(value)
	if err != nil {
		return "", err
	}
	node := domain.RtNode{
		Path:  collection,
		Key:   common.UUID(),
		Value: data,
	}
	if err := s.db.WithContext(ctx).Create(&node).Error; err != nil {
		return "", unavailable(err)
	}
	s.hub.Notify(collection)
	return node.Key, nil
}

func (s *GormStore) Set(ctx context.Context, path string, value interface{}) error {
	collection, key, err := splitPath(path)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidPath
	}
	data, err := s.encode(value)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RtNode{}).
			Where("path = ? AND node_key = ?", collection, key).
			Updates(map[string]interface{}{
				"value":      data,
				"updated_at": s.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&domain.RtNode{Path: collection, Key: key, Value: data}).Error
	})
	if err != nil {
		return unavailable(err)
	}
	s.hub.Notify(collection)
	return nil
}

func (s *GormStore) Remove(ctx context.Context, path string) error {
	collection, key, err := splitPath(path)
	if err != nil {
		return err
	}
	query := s.db.WithContext(ctx).Where("path = ?", collection)
	if key != "" {
		query = query.Where("node_key = ?", key)
	}
	if err := query.Delete(&domain.RtNode{}).Error; err != nil {
		return unavailable(err)
	}
	s.hub.Notify(collection)
	return nil
}

func (s *GormStore) Subscribe(path string, fn SnapshotFunc) (Unsubscribe, error) {
	collection, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if key != "" {
		return nil, ErrInvalidPath
	}
	return s.hub.Subscribe(collection, fn)
}

func (s *GormStore) load(collection string) (Snapshot, error) {
	var nodes []domain.RtNode
	err := s.db.Where("path = ?", collection).Order("seq ASC").Find(&nodes).Error
	if err != nil {
		return Snapshot{}, unavailable(err)
	}
	snap := Snapshot{Path: collection, Entries: make([]Entry, 0, len(nodes))}
	for _, n := range nodes {
		var value interface{}
		if err := json.UnmarshalFromString(n.Value, &value); err != nil {
			return Snapshot{}, err
		}
		snap.Entries = append(snap.Entries, Entry{Key: n.Key, Value: value})
	}
	return snap, nil
}

// Close stops delivering snapshots. The database handle is owned by the caller.
func (s *GormStore) Close() error {
	s.hub.Close()
	return nil
}
