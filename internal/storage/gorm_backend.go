package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentModel struct {
	Kind      string `gorm:"primaryKey;size:64"`
	ID        string `gorm:"primaryKey;size:64"`
	Seq       int64  `gorm:"not null;index"`
	Body      []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documentModel) TableName() string { return "documents" }

// GormBackend keeps every kind in a single documents table.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&documentModel{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) List(ctx context.Context, kind string) ([][]byte, error) {
	var rows []documentModel
	err := b.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("seq ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Body)
	}
	return out, nil
}

func (b *GormBackend) Get(ctx context.Context, kind, id string) ([]byte, error) {
	var row documentModel
	err := b.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Body, nil
}

func (b *GormBackend) Insert(ctx context.Context, kind, id string, body []byte) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&documentModel{}).
			Where("kind = ? AND id = ?", kind, id).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return ErrDuplicate
		}

		var last int64
		if err := tx.Model(&documentModel{}).
			Where("kind = ?", kind).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		return tx.Create(&documentModel{
			Kind: kind,
			ID:   id,
			Seq:  last + 1,
			Body: body,
		}).Error
	})
	return translateError(err)
}

func (b *GormBackend) Update(ctx context.Context, kind, id string, fn func([]byte) ([]byte, error)) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("kind = ? AND id = ?", kind, id)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row documentModel
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		body, err := fn(row.Body)
		if err != nil {
			return err
		}

		return tx.Model(&documentModel{}).
			Where("kind = ? AND id = ?", kind, id).
			Updates(map[string]any{"body": body, "updated_at": time.Now()}).Error
	})
}

func (b *GormBackend) Delete(ctx context.Context, kind, id string) error {
	res := b.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&documentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *GormBackend) Truncate(ctx context.Context, kind string) error {
	return b.db.WithContext(ctx).Where("kind = ?", kind).Delete(&documentModel{}).Error
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps unique violations raced past the existence check.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
