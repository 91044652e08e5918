package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one row of the cart_slots table.
type Slot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;type:varchar(191)"`
	Payload   []byte    `gorm:"column:payload;type:mediumblob;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null"`
}

func (Slot) TableName() string { return "cart_slots" }

// SQL keeps slots in MySQL through gorm.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL { return &SQL{db: db} }

// OpenMySQL validates dsn, forces parseTime and opens a gorm handle.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB_DSN: %w", err)
	}
	cfg.ParseTime = true
	db, err := gorm.Open(gormmysql.Open(cfg.FormatDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var row Slot
	err := s.db.WithContext(ctx).First(&row, "slot_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Payload, nil
}

// Put upserts the slot. Deadlocks and lock wait timeouts are retried a few
// times; two tabs of one session can race on the same row.
func (s *SQL) Put(ctx context.Context, key string, data []byte) error {
	op := func() (struct{}, error) {
		row := Slot{Key: key, Payload: data, UpdatedAt: time.Now().UTC()}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slot_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).
			Create(&row).Error
		if err != nil && !isRetryableMySQLError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(3))
	return err
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&Slot{}).Error
}

func isRetryableMySQLError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: deadlock found; 1205: lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

func (s *SQL) String() string { return "mysql(cart_slots)" }
