package store

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kendall-kelly/inventory-api/models"
)

// GormStore keeps each collection in its own relational table, migrated
// from the models package. Documents are read and written as column maps.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens a gorm connection for the "postgres" or "sqlite" dialect.
func OpenGorm(dialect, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewGormStore migrates one table per collection and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormStore{db: db}, nil
}

// DB returns the underlying gorm handle.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) table(ctx context.Context, collection string) (*gorm.DB, any, error) {
	model, ok := models.ForCollection(collection)
	if !ok {
		return nil, nil, fmt.Errorf("no table for collection %q", collection)
	}
	return s.db.WithContext(ctx).Model(model), model, nil
}

func (s *GormStore) Exists(ctx context.Context, collection string, id int64) (bool, error) {
	tx, _, err := s.table(ctx, collection)
	if err != nil {
		return false, err
	}
	var n int64
	if err := tx.Where("_id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n > 0, nil
}

func (s *GormStore) Get(ctx context.Context, collection string, id int64) (Document, error) {
	tx, _, err := s.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := tx.Where("_id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("getting %s: %w", collection, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return Document(rows[0]), nil
}

func (s *GormStore) Put(ctx context.Context, collection string, id int64, doc Document) error {
	_, model, err := s.table(ctx, collection)
	if err != nil {
		return err
	}
	row := withID(doc, id)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
		return tx.Model(model).Create(map[string]any(row)).Error
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	return nil
}

func (s *GormStore) Patch(ctx context.Context, collection string, id int64, fields Document) (bool, error) {
	tx, _, err := s.table(ctx, collection)
	if err != nil {
		return false, err
	}
	updates := fields.Clone()
	delete(updates, IDField)
	if len(updates) == 0 {
		return s.Exists(ctx, collection, id)
	}
	res := tx.Where("_id = ?", id).Updates(map[string]any(updates))
	if res.Error != nil {
		return false, fmt.Errorf("updating %s: %w", collection, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Remove(ctx context.Context, collection string, id int64) (bool, error) {
	_, model, err := s.table(ctx, collection)
	if err != nil {
		return false, err
	}
	res := s.db.WithContext(ctx).Where("_id = ?", id).Delete(model)
	if res.Error != nil {
		return false, fmt.Errorf("deleting %s: %w", collection, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Scan(ctx context.Context, collection string, match Predicate) ([]Document, error) {
	tx, _, err := s.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := tx.Order("_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = Document(r)
	}
	return filter(docs, match), nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
