package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/internal/users"
	"github.com/skillbazaar/backend/pkg/db"
	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/esewa"
	"github.com/skillbazaar/backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gateway interface {
	BuildPaymentForm(transactionUUID string, amount decimal.Decimal) (esewa.PaymentForm, error)
	VerifyCallback(encoded string) (esewa.CallbackResult, error)
}

// Service defines payment initiation and confirmation.
type Service interface {
	Initiate(ctx context.Context, orderID, buyerID uuid.UUID) (*InitiateResult, error)
	Confirm(ctx context.Context, callbackToken string) (*models.Payment, error)
}

type service struct {
	repo    Repository
	users   users.Repository
	tx      txRunner
	outbox  outboxPublisher
	gateway gateway
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, tx txRunner, outboxSvc outboxPublisher, gw gateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:    repo,
		users:   usersRepo,
		tx:      tx,
		outbox:  outboxSvc,
		gateway: gw,
	}, nil
}

// Initiate opens a purchase on the order and returns the signed gateway form.
// The purchase ID doubles as the gateway transaction UUID.
func (s *service) Initiate(ctx context.Context, orderID, buyerID uuid.UUID) (*InitiateResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result InitiateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SellerID == buyerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "buyer and seller cannot be the same user")
		}

		purchase, err := repo.CreatePurchase(ctx, &models.Purchase{
			OrderID:       order.ID,
			BuyerID:       buyerID,
			Status:        enums.PurchaseStatusPending,
			Decision:      enums.PurchaseDecisionPending,
			PaymentStatus: enums.PaymentStatusUnpaid,
			Amount:        order.Rate,
			PurchaseDate:  time.Now(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
		}

		updates := map[string]any{
			"status":   enums.OrderStatusPending,
			"buyer_id": buyerID,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "project order status")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderRequested,
			AggregateType: enums.AggregatePurchase,
			AggregateID:   purchase.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: buyerID, Role: enums.OrderRoleBought.String()},
			Data: PurchaseRequestedEvent{
				PurchaseID: purchase.ID,
				OrderID:    order.ID,
				BuyerID:    buyerID,
				SellerID:   order.SellerID,
				WorkTitle:  order.WorkTitle,
				Amount:     purchase.Amount,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit requested event")
		}

		form, err := s.gateway.BuildPaymentForm(purchase.ID.String(), purchase.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment form")
		}

		result = InitiateResult{Purchase: purchase, Form: form}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Confirm verifies the gateway callback and settles the purchase. The call is
// idempotent on the transaction UUID: an existing payment row is returned
// unchanged and nothing else mutates.
func (s *service) Confirm(ctx context.Context, callbackToken string) (*models.Payment, error) {
	callback, err := s.gateway.VerifyCallback(callbackToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway verification failed")
	}
	if !callback.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("gateway reported status %s", callback.Status))
	}

	purchaseID, err := uuid.Parse(callback.TransactionUUID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback transaction uuid is not a purchase id")
	}

	var payment *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase, err := repo.FindPurchaseByID(ctx, purchaseID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found for transaction")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}

		if existing, err := repo.FindPaymentByPurchaseID(ctx, purchase.ID); err == nil {
			payment = existing
			return nil
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		amount, err := decimal.NewFromString(callback.TotalAmount)
		if err != nil || !amount.Equal(purchase.Amount) {
			return pkgerrors.New(pkgerrors.CodeDependency, "callback amount does not match purchase")
		}

		order, err := repo.FindOrderByID(ctx, purchase.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		raw, _ := json.Marshal(callback)
		created, err := repo.CreatePayment(ctx, &models.Payment{
			PurchaseID:      purchase.ID,
			TransactionCode: callback.TransactionCode,
			Amount:          amount,
			Gateway:         models.GatewayEsewa,
			Status:          enums.TransactionStatusSuccess,
			RawPayload:      raw,
		})
		if err != nil {
			// Lost a race with a concurrent confirm; surface the winner's row.
			if db.IsUniqueViolation(err, "ux_payments_purchase_id") {
				existing, findErr := repo.FindPaymentByPurchaseID(ctx, purchase.ID)
				if findErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load payment after conflict")
				}
				payment = existing
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		now := time.Now()
		if err := repo.UpdatePurchase(ctx, purchase.ID, map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase paid")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusPaid,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "project order status")
		}

		if err := s.users.WithTx(tx).ApplyPaymentTotals(ctx, order.SellerID, purchase.BuyerID, amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment totals")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentSucceeded,
			AggregateType: enums.AggregatePayment,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: purchase.BuyerID, Role: enums.OrderRoleBought.String()},
			Data: PaymentSucceededEvent{
				PaymentID:       created.ID,
				PurchaseID:      purchase.ID,
				OrderID:         order.ID,
				BuyerID:         purchase.BuyerID,
				SellerID:        order.SellerID,
				WorkTitle:       order.WorkTitle,
				Amount:          amount,
				TransactionCode: callback.TransactionCode,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payment event")
		}

		payment = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
