package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/pagination"
)

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  location TEXT,
  phone TEXT,
  skills TEXT NOT NULL DEFAULT '{}',
  interests TEXT NOT NULL DEFAULT '{}',
  total_earnings NUMERIC NOT NULL DEFAULT 0,
  total_spending NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  work_title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  rate NUMERIC NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  seller_id TEXT NOT NULL,
  buyer_id TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  decision TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  amount NUMERIC NOT NULL DEFAULT 0,
  purchase_date DATETIME NOT NULL,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  reviewer_id TEXT NOT NULL,
  rating INTEGER NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  CONSTRAINT ux_reviews_order_reviewer UNIQUE (order_id, reviewer_id)
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedReviewer(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateReviewEnforcesUniqueness(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	reviewer := seedReviewer(t, db, "Anita")

	first := &models.Review{ID: uuid.New(), OrderID: orderID, ReviewerID: reviewer.ID, Rating: 5, Comment: "great"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Review{ID: uuid.New(), OrderID: orderID, ReviewerID: reviewer.ID, Rating: 1, Comment: "again"}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
}

func TestListByOrderNewestFirstWithReviewer(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		reviewer := seedReviewer(t, db, "Reviewer")
		row := &models.Review{
			ID:         uuid.New(),
			OrderID:    orderID,
			ReviewerID: reviewer.ID,
			Rating:     4,
			Comment:    "solid",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(row).Error)
	}

	rows, cursor, err := repo.ListByOrder(ctx, orderID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, cursor)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))
	require.NotNil(t, rows[0].Reviewer)
	assert.Equal(t, "Reviewer", rows[0].Reviewer.Name)

	rest, next, err := repo.ListByOrder(ctx, orderID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, next)
}

func TestFindPurchasesByOrderAndBuyer(t *testing.T) {
	db := setupReviewsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	buyerID := uuid.New()
	for _, status := range []enums.PurchaseStatus{enums.PurchaseStatusCancelled, enums.PurchaseStatusCompleted} {
		row := &models.Purchase{
			ID:           uuid.New(),
			OrderID:      orderID,
			BuyerID:      buyerID,
			Status:       status,
			PurchaseDate: time.Now(),
		}
		require.NoError(t, db.Create(row).Error)
	}
	other := &models.Purchase{ID: uuid.New(), OrderID: orderID, BuyerID: uuid.New(), PurchaseDate: time.Now()}
	require.NoError(t, db.Create(other).Error)

	rows, err := repo.FindPurchasesByOrderAndBuyer(ctx, orderID, buyerID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, buyerID, row.BuyerID)
	}
}
