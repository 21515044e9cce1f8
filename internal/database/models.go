package database

import "time"

// Session binds one owner to one running workspace container. The
// (owner_id, container_name) pair is the natural key; ttl is the only
// field mutated after creation.
type Session struct {
	OwnerID       string `gorm:"primaryKey;size:128" json:"owner_id"`
	ContainerName string `gorm:"primaryKey;size:255" json:"container_name"`
	Image         string `gorm:"not null" json:"image"`
	Credential    string `json:"-"` // fernet-encrypted VNC password
	Created       int64  `gorm:"column:created;not null" json:"created"`
	TTL           int64  `gorm:"column:ttl;not null;default:0" json:"ttl"` // seconds; 0 = infinite
}

type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
