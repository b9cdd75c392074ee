package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
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
  amount NUMERIC NOT NULL,
  purchase_date DATETIME NOT NULL,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL UNIQUE,
  transaction_code TEXT NOT NULL DEFAULT '',
  amount NUMERIC NOT NULL,
  gateway TEXT NOT NULL DEFAULT 'ESEWA',
  status TEXT NOT NULL DEFAULT 'success',
  raw_payload TEXT,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedSeller(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Name:         name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedOrder(t *testing.T, db *gorm.DB, seller *models.User, title string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:        uuid.New(),
		WorkTitle: title,
		Rate:      decimal.NewFromInt(500),
		Category:  "design",
		SellerID:  seller.ID,
		Status:    enums.OrderStatusOpen,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListOpenOrdersFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := seedSeller(t, db, "seller")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedOrder(t, db, seller, "Logo design", base.Add(time.Duration(i)*time.Minute))
	}
	other := seedOrder(t, db, seller, "Essay writing", base.Add(10*time.Minute))
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", other.ID).Update("category", "writing").Error)

	page1, err := repo.ListOpenOrders(ctx, pagination.Params{Limit: 3}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, page1.Orders, 3)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.ListOpenOrders(ctx, pagination.Params{Limit: 3, Cursor: page1.NextCursor}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, page2.Orders, 3)
	assert.Empty(t, page2.NextCursor)

	// Newest first and no overlap across pages.
	seen := map[uuid.UUID]bool{}
	for _, row := range append(page1.Orders, page2.Orders...) {
		assert.False(t, seen[row.ID], "duplicate row %s", row.ID)
		seen[row.ID] = true
	}

	writing, err := repo.ListOpenOrders(ctx, pagination.Params{}, ListFilters{Category: "writing"})
	require.NoError(t, err)
	require.Len(t, writing.Orders, 1)
	assert.Equal(t, "Essay writing", writing.Orders[0].WorkTitle)

	matched, err := repo.ListOpenOrders(ctx, pagination.Params{}, ListFilters{Query: "logo"})
	require.NoError(t, err)
	assert.Len(t, matched.Orders, 5)
}

func TestListUserOrdersByRole(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := seedSeller(t, db, "seller")
	buyer := seedSeller(t, db, "buyer")

	sold := seedOrder(t, db, seller, "Sold work", time.Now())
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", sold.ID).
		Updates(map[string]any{"buyer_id": buyer.ID, "status": enums.OrderStatusInProgress}).Error)

	soldList, err := repo.ListUserOrders(ctx, seller.ID, enums.OrderRoleSold, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, soldList.Orders, 1)

	boughtList, err := repo.ListUserOrders(ctx, buyer.ID, enums.OrderRoleBought, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, boughtList.Orders, 1)
	assert.Equal(t, sold.ID, boughtList.Orders[0].ID)

	empty, err := repo.ListUserOrders(ctx, buyer.ID, enums.OrderRoleSold, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
}

func TestPurchaseLookupsAndProjection(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := seedSeller(t, db, "seller")
	buyer := seedSeller(t, db, "buyer")
	order := seedOrder(t, db, seller, "Logo design", time.Now())

	first := &models.Purchase{
		ID:           uuid.New(),
		OrderID:      order.ID,
		BuyerID:      buyer.ID,
		Status:       enums.PurchaseStatusCancelled,
		Decision:     enums.PurchaseDecisionDeclined,
		Amount:       order.Rate,
		PurchaseDate: time.Now().Add(-time.Hour),
		CreatedAt:    time.Now().Add(-time.Hour),
	}
	second := &models.Purchase{
		ID:           uuid.New(),
		OrderID:      order.ID,
		BuyerID:      buyer.ID,
		Status:       enums.PurchaseStatusPending,
		Decision:     enums.PurchaseDecisionPending,
		Amount:       order.Rate,
		PurchaseDate: time.Now(),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	latest, err := repo.FindLatestPurchaseByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	ids, err := repo.FindPurchaseIDsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	require.NoError(t, repo.UpdatePurchase(ctx, second.ID, map[string]any{
		"status": enums.PurchaseStatusInProgress,
	}))
	updated, err := repo.FindPurchaseByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseStatusInProgress, updated.Status)

	require.NoError(t, repo.UpdateOrderProjection(ctx, order.ID, enums.OrderStatusInProgress, &buyer.ID))
	row, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInProgress, row.Status)
	require.NotNil(t, row.BuyerID)
	assert.Equal(t, buyer.ID, *row.BuyerID)
}
