package domain

import "time"

// RtNode is one JSON document of the real-time store, addressed by
// Path (the collection) and Key. Seq keeps insertion order.
type RtNode struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement" json:"seq"`
	Path      string    `gorm:"size:64;uniqueIndex:idx_rt_node_path_key" json:"path"`
	Key       string    `gorm:"column:node_key;size:64;uniqueIndex:idx_rt_node_path_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (RtNode) TableName() string {
	return "rt_node"
}
