package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db"
	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/pagination"
)

const maxCommentLength = 2000

// Service exposes review operations.
type Service interface {
	Add(ctx context.Context, reviewerID uuid.UUID, input AddInput) (*View, error)
	List(ctx context.Context, orderID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	repo Repository
}

// NewService builds the reviews service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

// Add posts a review. Only the buyer of a completed or paid purchase of the
// order may review it, and only once.
func (s *service) Add(ctx context.Context, reviewerID uuid.UUID, input AddInput) (*View, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if len(comment) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long")
	}

	if _, err := s.repo.FindOrderByID(ctx, input.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	purchases, err := s.repo.FindPurchasesByOrderAndBuyer(ctx, input.OrderID, reviewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchases")
	}
	if len(purchases) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers of this order can review it")
	}
	if !anyReviewable(purchases) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order must be completed or paid before reviewing")
	}

	review := &models.Review{
		ID:         uuid.New(),
		OrderID:    input.OrderID,
		ReviewerID: reviewerID,
		Rating:     input.Rating,
		Comment:    comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "ux_reviews_order_reviewer") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	view := toView(*review)
	return &view, nil
}

// List returns an order's reviews, newest first.
func (s *service) List(ctx context.Context, orderID uuid.UUID, params pagination.Params) (*List, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	rows, nextCursor, err := s.repo.ListByOrder(ctx, orderID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return &List{Reviews: views, NextCursor: nextCursor}, nil
}

func anyReviewable(purchases []models.Purchase) bool {
	for _, purchase := range purchases {
		if purchase.Status == enums.PurchaseStatusCompleted {
			return true
		}
		if purchase.PaymentStatus == enums.PaymentStatusPaid {
			return true
		}
	}
	return false
}
