package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jiaming2012/skew-entropy/src/dbutils"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

const insertBatchSize = 500

type Connector func() (*gorm.DB, error)

// PostgresStore opens a connection for each call and closes it before returning.
type PostgresStore struct {
	connect Connector
}

func NewPostgresStore(cfg dbutils.PostgresConfig) *PostgresStore {
	return NewPostgresStoreWithConnector(func() (*gorm.DB, error) {
		return dbutils.InitPostgres(cfg)
	})
}

func NewPostgresStoreWithConnector(connect Connector) *PostgresStore {
	return &PostgresStore{connect: connect}
}

func (s *PostgresStore) withDB(fn func(db *gorm.DB) error) error {
	db, err := s.connect()
	if err != nil {
		return fmt.Errorf("PostgresStore: failed to connect: %w", err)
	}

	defer func() {
		if err := dbutils.Close(db); err != nil {
			log.Warnf("PostgresStore: failed to close connection: %v", err)
		}
	}()

	return fn(db)
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.withDB(func(db *gorm.DB) error {
		if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("PostgresStore.Migrate: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) FetchOptionQuotes(ctx context.Context, startDate, endDate time.Time) ([]*eventmodels.OptionQuote, error) {
	endDate = resolveEndDate(endDate)

	var records []OptionQuoteRecord
	err := s.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("quote_date >= ? AND quote_date <= ?", startDate.Format(eventmodels.DateLayout), endDate.Format(eventmodels.DateLayout)).
			Where("expire_date IS NOT NULL AND c_bid IS NOT NULL AND c_ask IS NOT NULL AND p_bid IS NOT NULL AND p_ask IS NOT NULL").
			Order("quote_date, expire_date, strike").
			Find(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.FetchOptionQuotes: %w", err)
	}

	quotes := make([]*eventmodels.OptionQuote, len(records))
	for i := range records {
		quotes[i] = records[i].ToOptionQuote()
	}

	log.Debugf("PostgresStore.FetchOptionQuotes: fetched %d rows between %s and %s", len(quotes), startDate.Format(eventmodels.DateLayout), endDate.Format(eventmodels.DateLayout))

	return quotes, nil
}

// ReplaceQuoteDate deletes the rows of quoteDate and inserts rows in one transaction.
// Duplicate contracts are ignored.
func (s *PostgresStore) ReplaceQuoteDate(ctx context.Context, quoteDate time.Time, rows []*eventmodels.OptionChainRow) (int64, error) {
	records := make([]*OptionQuoteRecord, len(rows))
	for i, row := range rows {
		records[i] = NewOptionQuoteRecord(row)
	}

	var inserted int64
	err := s.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Where("quote_date = ?", quoteDate.Format(eventmodels.DateLayout)).Delete(&OptionQuoteRecord{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete existing rows: %w", result.Error)
			}

			log.Infof("Deleted %d existing rows for quote date: %s", result.RowsAffected, quoteDate.Format(eventmodels.DateLayout))

			if len(records) == 0 {
				return nil
			}

			result = tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(records, insertBatchSize)
			if result.Error != nil {
				return fmt.Errorf("failed to insert rows: %w", result.Error)
			}

			inserted = result.RowsAffected
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("PostgresStore.ReplaceQuoteDate: %w", err)
	}

	return inserted, nil
}

func (s *PostgresStore) SaveEntropyRun(ctx context.Context, run *eventmodels.EntropyRun) error {
	record := NewEntropyRunRecord(run)

	err := s.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).Session(&gorm.Session{CreateBatchSize: insertBatchSize}).Create(record).Error
	})
	if err != nil {
		return fmt.Errorf("PostgresStore.SaveEntropyRun: %w", err)
	}

	return nil
}

func (s *PostgresStore) FetchEntropyRun(ctx context.Context, id uuid.UUID) (*eventmodels.EntropyRun, error) {
	var record EntropyRunRecord

	err := s.withDB(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Preload("Points", func(db *gorm.DB) *gorm.DB {
				return db.Order("date")
			}).
			First(&record, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newEntropyRunNotFoundError(id)
		}
		return nil, fmt.Errorf("PostgresStore.FetchEntropyRun: %w", err)
	}

	return record.ToModel(), nil
}
