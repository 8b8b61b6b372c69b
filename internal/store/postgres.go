package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matthieukhl/shopcore/internal/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type record struct {
	Collection string    `gorm:"primaryKey;size:32"`
	ID         string    `gorm:"primaryKey;size:64"`
	Body       string    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time
}

func (record) TableName() string {
	return database.RecordsTable
}

// Postgres stores records through gorm in a jsonb column.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the record table.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", database.RecordsTable, err)
	}
	return &Postgres{db: db}, nil
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Load(ctx context.Context, collection string) (map[string][]byte, error) {
	var recs []record
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	out := make(map[string][]byte, len(recs))
	for _, r := range recs {
		out[r.ID] = []byte(r.Body)
	}
	return out, nil
}

func (s *Postgres) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return []byte(rec.Body), nil
}

func (s *Postgres) Save(ctx context.Context, collection string, records map[string][]byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", collection).Delete(&record{}).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", collection, err)
		}
		if len(records) == 0 {
			return nil
		}

		recs := make([]record, 0, len(records))
		for _, id := range sortedKeys(records) {
			recs = append(recs, record{Collection: collection, ID: id, Body: string(records[id])})
		}
		if err := tx.Create(&recs).Error; err != nil {
			return fmt.Errorf("failed to insert %s: %w", collection, err)
		}
		return nil
	})
}

func (s *Postgres) Commit(ctx context.Context, writes ...Write) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			if w.Delete {
				if err := tx.Where("collection = ? AND id = ?", w.Collection, w.ID).Delete(&record{}).Error; err != nil {
					return fmt.Errorf("failed to delete %s/%s: %w", w.Collection, w.ID, err)
				}
				continue
			}

			rec := record{Collection: w.Collection, ID: w.ID, Body: string(w.Record)}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return fmt.Errorf("failed to upsert %s/%s: %w", w.Collection, w.ID, err)
			}
		}
		return nil
	})
}

func (s *Postgres) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Postgres) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
