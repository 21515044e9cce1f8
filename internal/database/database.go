package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hilsamlabs/workspaces-api/internal/config"
	"github.com/hilsamlabs/workspaces-api/internal/ttl"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init() error {
	dbPath := config.Cfg.DatabasePath
	dbDir := filepath.Dir(dbPath)
	if dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := DB.AutoMigrate(&Session{}, &Setting{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := migrateCreatedTimestamps(); err != nil {
		return fmt.Errorf("migrate created timestamps: %w", err)
	}

	return nil
}

func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// migrateCreatedTimestamps coerces legacy ISO-8601 created values to epoch
// seconds. Older deployments wrote created as ISO text; SQLite's dynamic
// typing keeps those rows readable, so this is the single place that still
// accepts both formats. Idempotent: numeric rows pass through untouched.
func migrateCreatedTimestamps() error {
	type row struct {
		OwnerID       string
		ContainerName string
		Created       string
	}
	var rows []row
	if err := DB.Model(&Session{}).Select("owner_id", "container_name", "created").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		epoch, err := ttl.ParseTimestamp(r.Created)
		if err != nil {
			log.Printf("WARNING: session %s/%s has unparseable created %q, leaving as-is",
				r.OwnerID, r.ContainerName, r.Created)
			continue
		}
		if fmt.Sprintf("%d", epoch) == r.Created {
			continue
		}
		if err := DB.Model(&Session{}).
			Where("owner_id = ? AND container_name = ?", r.OwnerID, r.ContainerName).
			Update("created", epoch).Error; err != nil {
			return fmt.Errorf("rewrite created for %s/%s: %w", r.OwnerID, r.ContainerName, err)
		}
	}
	return nil
}

func GetSetting(key string) (string, error) {
	var s Setting
	if err := DB.Where("key = ?", key).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

func SetSetting(key, value string) error {
	return DB.Where("key = ?", key).Assign(Setting{Value: value}).FirstOrCreate(&Setting{Key: key}).Error
}

// Session helpers. Every query is scoped by owner; the caller's resolved
// identity is the only owner value ever passed in.

func ListSessions(ownerID string) ([]Session, error) {
	var sessions []Session
	if err := DB.Where("owner_id = ?", ownerID).Order("created ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListFiniteSessions returns every session with a finite lease, across all
// owners. Infinite sessions (ttl = 0) are excluded at the query level.
func ListFiniteSessions() ([]Session, error) {
	var sessions []Session
	if err := DB.Where("ttl > 0").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func GetSession(ownerID, containerName string) (*Session, error) {
	var s Session
	err := DB.Where("owner_id = ? AND container_name = ?", ownerID, containerName).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSession inserts a session record, replacing any existing row with
// the same (owner_id, container_name) key. Names carry a random suffix so
// the replace path is never hit in practice.
func UpsertSession(s *Session) error {
	return DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error
}

// DeleteSession removes a session record. Deleting an absent row is not an
// error; concurrent deletes (owner stop racing the sweeper) both succeed.
func DeleteSession(ownerID, containerName string) error {
	return DB.Where("owner_id = ? AND container_name = ?", ownerID, containerName).Delete(&Session{}).Error
}

// UpdateSessionTTL atomically rewrites the ttl of one session.
func UpdateSessionTTL(ownerID, containerName string, ttlSeconds int64) error {
	return DB.Model(&Session{}).
		Where("owner_id = ? AND container_name = ?", ownerID, containerName).
		Update("ttl", ttlSeconds).Error
}

// IsNotFound reports whether err means the queried record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
