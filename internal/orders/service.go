package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/outbox"
	"github.com/skillbazaar/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// allowedTransitions is the exhaustive set of legal status moves. Anything
// absent here is a state conflict, including no-ops and backwards moves.
var allowedTransitions = map[enums.PurchaseStatus]enums.PurchaseStatus{
	enums.PurchaseStatusPending:    enums.PurchaseStatusInProgress,
	enums.PurchaseStatusInProgress: enums.PurchaseStatusCompleted,
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderView, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	ListOpen(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListMine(ctx context.Context, userID uuid.UUID, role enums.OrderRole, params pagination.Params) (*OrderList, error)
	Transition(ctx context.Context, input TransitionInput) (*OrderView, error)
	Decision(ctx context.Context, input DecisionInput) (*OrderView, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderView, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	title := strings.TrimSpace(input.WorkTitle)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work title required")
	}
	if input.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}

	order, err := s.repo.CreateOrder(ctx, &models.Order{
		WorkTitle:   title,
		Description: strings.TrimSpace(input.Description),
		Rate:        input.Rate,
		Category:    strings.TrimSpace(input.Category),
		SellerID:    input.SellerID,
		Status:      enums.OrderStatusOpen,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return s.Get(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	purchase, err := s.repo.FindLatestPurchaseByOrder(ctx, orderID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}

	view := buildView(order, purchase)
	return &view, nil
}

func (s *service) ListOpen(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListOpenOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, role enums.OrderRole, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be sold or bought")
	}
	list, err := s.repo.ListUserOrders(ctx, userID, role, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	return list, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*OrderView, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be sold or bought")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown target status")
	}

	var view OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase, order, err := s.resolvePurchase(ctx, repo, input.OrderID, input.PurchaseID)
		if err != nil {
			return err
		}

		switch input.Role {
		case enums.OrderRoleSold:
			if order.SellerID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can act on sold orders")
			}
		case enums.OrderRoleBought:
			if purchase.BuyerID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can act on bought orders")
			}
		}

		if purchase.Decision == enums.PurchaseDecisionDeclined {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move a declined purchase to %s", input.NewStatus))
		}
		if target, ok := allowedTransitions[purchase.Status]; !ok || target != input.NewStatus {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition purchase from %s to %s", purchase.Status, input.NewStatus))
		}

		from := purchase.Status
		if err := repo.UpdatePurchase(ctx, purchase.ID, map[string]any{"status": input.NewStatus}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase status")
		}
		purchase.Status = input.NewStatus

		projected := projectOrderStatus(purchase)
		if err := repo.UpdateOrderProjection(ctx, order.ID, projected, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "project order status")
		}
		order.Status = projected

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderProgressed,
			AggregateType: enums.AggregatePurchase,
			AggregateID:   purchase.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.Role.String()},
			Data: PurchaseProgressedEvent{
				PurchaseID: purchase.ID,
				OrderID:    order.ID,
				BuyerID:    purchase.BuyerID,
				SellerID:   order.SellerID,
				WorkTitle:  order.WorkTitle,
				From:       from,
				To:         purchase.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit progressed event")
		}

		view = buildView(order, purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) Decision(ctx context.Context, input DecisionInput) (*OrderView, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Decision != SellerDecisionAccept && input.Decision != SellerDecisionDecline {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or decline")
	}

	var view OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase, order, err := s.resolvePurchase(ctx, repo, input.OrderID, input.PurchaseID)
		if err != nil {
			return err
		}
		if order.SellerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can decide a purchase request")
		}
		if purchase.Decision != enums.PurchaseDecisionPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("purchase request already %s", purchase.Decision))
		}

		updates := map[string]any{}
		if input.Decision == SellerDecisionAccept {
			purchase.Decision = enums.PurchaseDecisionAccepted
			updates["decision"] = purchase.Decision
		} else {
			purchase.Decision = enums.PurchaseDecisionDeclined
			purchase.Status = enums.PurchaseStatusCancelled
			updates["decision"] = purchase.Decision
			updates["status"] = purchase.Status
		}
		if err := repo.UpdatePurchase(ctx, purchase.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase decision")
		}

		projected := projectOrderStatus(purchase)
		if err := repo.UpdateOrderProjection(ctx, order.ID, projected, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "project order status")
		}
		order.Status = projected

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDecided,
			AggregateType: enums.AggregatePurchase,
			AggregateID:   purchase.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: enums.OrderRoleSold.String()},
			Data: PurchaseDecidedEvent{
				PurchaseID: purchase.ID,
				OrderID:    order.ID,
				BuyerID:    purchase.BuyerID,
				SellerID:   order.SellerID,
				WorkTitle:  order.WorkTitle,
				Decision:   purchase.Decision,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit decided event")
		}

		view = buildView(order, purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// resolvePurchase loads the purchase by explicit ID when given, falling back
// to the latest purchase on the order. The NotFound details list sibling
// purchase IDs on the same order so misdirected clients can self-correct.
func (s *service) resolvePurchase(ctx context.Context, repo Repository, orderID uuid.UUID, purchaseID *uuid.UUID) (*models.Purchase, *models.Order, error) {
	var purchase *models.Purchase
	var err error

	switch {
	case purchaseID != nil && *purchaseID != uuid.Nil:
		purchase, err = repo.FindPurchaseByID(ctx, *purchaseID)
	case orderID != uuid.Nil:
		purchase, err = repo.FindLatestPurchaseByOrder(ctx, orderID)
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id or purchase id required")
	}

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, s.purchaseNotFound(ctx, repo, orderID)
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}

	if orderID != uuid.Nil && purchase.OrderID != orderID {
		return nil, nil, s.purchaseNotFound(ctx, repo, orderID)
	}

	order, err := repo.FindOrderByID(ctx, purchase.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return purchase, order, nil
}

func (s *service) purchaseNotFound(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	notFound := pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	if orderID == uuid.Nil {
		return notFound
	}
	siblings, err := repo.FindPurchaseIDsByOrder(ctx, orderID)
	if err != nil || len(siblings) == 0 {
		return notFound
	}
	return notFound.WithDetails(map[string]any{"order_purchase_ids": siblings})
}

// projectOrderStatus derives the denormalized order status from the
// authoritative purchase state.
func projectOrderStatus(purchase *models.Purchase) enums.OrderStatus {
	if purchase == nil {
		return enums.OrderStatusOpen
	}
	if purchase.Decision == enums.PurchaseDecisionDeclined {
		return enums.OrderStatusDeclined
	}
	if purchase.PaymentStatus == enums.PaymentStatusPaid {
		return enums.OrderStatusPaid
	}
	switch purchase.Status {
	case enums.PurchaseStatusCompleted:
		return enums.OrderStatusCompleted
	case enums.PurchaseStatusInProgress:
		return enums.OrderStatusInProgress
	case enums.PurchaseStatusCancelled:
		return enums.OrderStatusCancelled
	}
	if purchase.Decision == enums.PurchaseDecisionAccepted {
		return enums.OrderStatusAccepted
	}
	return enums.OrderStatusPending
}

func buildView(order *models.Order, purchase *models.Purchase) OrderView {
	view := OrderView{
		ID:          order.ID,
		WorkTitle:   order.WorkTitle,
		Description: order.Description,
		Rate:        order.Rate,
		Category:    order.Category,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
	}
	if order.Seller != nil {
		view.Seller = UserSummary{ID: order.Seller.ID, Name: order.Seller.Name}
	}
	if order.Buyer != nil {
		view.Buyer = &UserSummary{ID: order.Buyer.ID, Name: order.Buyer.Name}
	}
	if purchase != nil {
		id := purchase.ID
		view.PurchaseID = &id
		view.PurchaseStatus = purchase.Status
		view.Decision = purchase.Decision
		view.PaymentStatus = purchase.PaymentStatus
		if purchase.Payment != nil {
			view.Payment = &PaymentSummary{
				ID:              purchase.Payment.ID,
				TransactionCode: purchase.Payment.TransactionCode,
				Amount:          purchase.Payment.Amount,
				PaidAt:          purchase.Payment.CreatedAt,
			}
		}
	}
	return view
}
