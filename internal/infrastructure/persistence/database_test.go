package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database backed by sqlmock speaking the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.Error(t, db.Ping(context.Background()))
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "Product"))

	err := translate(gorm.ErrRecordNotFound, "Product")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Product not found", err.Error())

	err = translate(gorm.ErrDuplicatedKey, "Product")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	err = translate(errors.New(`pq: duplicate key value violates unique constraint "idx_products_sku"`), "Product")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other, "Product"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%shoe%", likePattern("  Shoe "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestOrderRepository_SalesByInterval_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db.DB)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{"period", "revenue", "order_count"}).
		AddRow(from, "120.50", 3).
		AddRow(from.AddDate(0, 0, 7), "80.00", 1)
	mock.ExpectQuery(`SELECT date_trunc\(\$1, created_at\) AS period.*FROM "orders" WHERE payment_status = \$2.*GROUP BY "?period"? ORDER BY period ASC`).
		WithArgs("week", trade.PaymentStatusPaid, from, to).
		WillReturnRows(rows)

	buckets, err := repo.SalesByInterval(context.Background(), from, to, trade.IntervalWeek)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.True(t, decimal.RequireFromString("120.50").Equal(buckets[0].Revenue))
	assert.Equal(t, int64(3), buckets[0].OrderCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Update_VersionConflict(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db.DB)

	order := &trade.Order{}
	order.Version = 3
	order.MarkPersisted()
	order.Version = 4

	mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), order)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
