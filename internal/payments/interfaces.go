package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
)

// Repository defines persistence operations for purchases and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CreatePurchase(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error)
	FindPurchaseByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPaymentByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Payment, error)
}
