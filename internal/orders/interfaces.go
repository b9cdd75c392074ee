package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/pagination"
)

// Repository defines persistence operations for orders and purchases.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOpenOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, role enums.OrderRole, params pagination.Params) (*OrderList, error)
	FindPurchaseByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	FindLatestPurchaseByOrder(ctx context.Context, orderID uuid.UUID) (*models.Purchase, error)
	FindPurchaseIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateOrderProjection(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, buyerID *uuid.UUID) error
}
