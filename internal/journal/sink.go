package journal

import (
	"context"

	"gorm.io/gorm"

	"main/pkg/conn"
)

// GormSink persists entries through a PostgreSQL connection pool.
type GormSink struct {
	db *gorm.DB
}

// NewGormSink migrates the journal table and returns a sink over the
// client's pool.
func NewGormSink(client *conn.Client) (*GormSink, error) {
	db := client.DB()
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormSink{db: db}, nil
}

// Save inserts one entry.
func (s *GormSink) Save(ctx context.Context, entry Entry) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}
