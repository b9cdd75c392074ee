package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Buyer").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOpenOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Seller").
		Where("status = ?", enums.OrderStatusOpen)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(work_title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	return r.listOrders(ctx, query, params)
}

func (r *repository) ListUserOrders(ctx context.Context, userID uuid.UUID, role enums.OrderRole, params pagination.Params) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Seller")

	switch role {
	case enums.OrderRoleSold:
		query = query.Where("seller_id = ?", userID)
	default:
		query = query.Where("buyer_id = ?", userID)
	}

	return r.listOrders(ctx, query, params)
}

func (r *repository) listOrders(ctx context.Context, query *gorm.DB, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows)), NextCursor: nextCursor}
	for i := range rows {
		list.Orders = append(list.Orders, toOrderSummary(&rows[i]))
	}
	return list, nil
}

func (r *repository) FindPurchaseByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("id = ?", id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) FindLatestPurchaseByOrder(ctx context.Context, orderID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) FindPurchaseIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateOrderProjection(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, buyerID *uuid.UUID) error {
	updates := map[string]any{"status": status}
	if buyerID != nil {
		updates["buyer_id"] = *buyerID
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func toOrderSummary(order *models.Order) OrderSummary {
	summary := OrderSummary{
		ID:        order.ID,
		WorkTitle: order.WorkTitle,
		Rate:      order.Rate,
		Category:  order.Category,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}
	if order.Seller != nil {
		summary.Seller = UserSummary{ID: order.Seller.ID, Name: order.Seller.Name}
	}
	return summary
}
