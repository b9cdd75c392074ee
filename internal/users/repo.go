package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ApplyPaymentTotals bumps the seller's earnings and the buyer's spending in
// one statement each. Callers run this inside the payment transaction.
func (r *repository) ApplyPaymentTotals(ctx context.Context, sellerID, buyerID uuid.UUID, amount decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).
		Where("id = ?", sellerID).
		Update("total_earnings", gorm.Expr("total_earnings + ?", amount)).Error; err != nil {
		return err
	}
	return db.Model(&models.User{}).
		Where("id = ?", buyerID).
		Update("total_spending", gorm.Expr("total_spending + ?", amount)).Error
}
