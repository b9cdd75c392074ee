package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/db"
	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/logger"
	"github.com/skillbazaar/backend/pkg/outbox"
)

// ConsumerName labels this consumer in worker metrics and logs.
const ConsumerName = "notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns order and payment domain events into durable per-user
// notification rows. It runs inside the outbox dispatch loop, so creation is
// retried until the event is marked published.
type Consumer struct {
	repo creator
	logg *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo creator, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, logg: logg}, nil
}

// Handle processes one outbox event. Unknown event types are skipped.
func (c *Consumer) Handle(ctx context.Context, event *models.OutboxEvent) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID.String(),
		"event_type": string(event.EventType),
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch event.EventType {
	case enums.EventOrderRequested:
		return c.handleRequested(logCtx, envelope.EventID, envelope.Data)
	case enums.EventOrderDecided:
		return c.handleDecided(logCtx, envelope.EventID, envelope.Data)
	case enums.EventOrderProgressed:
		return c.handleProgressed(logCtx, envelope.EventID, envelope.Data)
	case enums.EventPaymentSucceeded:
		return c.handlePayment(logCtx, envelope.EventID, envelope.Data)
	default:
		c.logg.Info(logCtx, "skipping unhandled event type")
		return nil
	}
}

type orderEventPayload struct {
	PurchaseID uuid.UUID              `json:"purchase_id"`
	OrderID    uuid.UUID              `json:"order_id"`
	BuyerID    uuid.UUID              `json:"buyer_id"`
	SellerID   uuid.UUID              `json:"seller_id"`
	WorkTitle  string                 `json:"work_title"`
	Amount     decimal.Decimal        `json:"amount"`
	Decision   enums.PurchaseDecision `json:"decision"`
	To         enums.PurchaseStatus   `json:"to"`
}

type paymentEventPayload struct {
	PaymentID       uuid.UUID       `json:"payment_id"`
	PurchaseID      uuid.UUID       `json:"purchase_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	WorkTitle       string          `json:"work_title"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionCode string          `json:"transaction_code"`
}

func (c *Consumer) handleRequested(ctx context.Context, eventID string, data json.RawMessage) error {
	var payload orderEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse requested payload: %w", err)
	}
	if payload.SellerID == uuid.Nil {
		return fmt.Errorf("seller id missing")
	}
	message := fmt.Sprintf("Someone wants to buy %q for %s.", payload.WorkTitle, payload.Amount.StringFixed(2))
	return c.create(ctx, eventID, payload.SellerID, enums.NotificationTypeOrderRequested, message, payload.OrderID)
}

func (c *Consumer) handleDecided(ctx context.Context, eventID string, data json.RawMessage) error {
	var payload orderEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse decided payload: %w", err)
	}
	if payload.BuyerID == uuid.Nil {
		return fmt.Errorf("buyer id missing")
	}

	notifType := enums.NotificationTypeOrderAccepted
	message := fmt.Sprintf("Your request for %q was accepted.", payload.WorkTitle)
	if payload.Decision == enums.PurchaseDecisionDeclined {
		notifType = enums.NotificationTypeOrderDeclined
		message = fmt.Sprintf("Your request for %q was declined.", payload.WorkTitle)
	}
	return c.create(ctx, eventID, payload.BuyerID, notifType, message, payload.OrderID)
}

func (c *Consumer) handleProgressed(ctx context.Context, eventID string, data json.RawMessage) error {
	var payload orderEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse progressed payload: %w", err)
	}
	if payload.BuyerID == uuid.Nil {
		return fmt.Errorf("buyer id missing")
	}
	message := fmt.Sprintf("Work on %q is now %s.", payload.WorkTitle, payload.To)
	return c.create(ctx, eventID, payload.BuyerID, enums.NotificationTypeOrderProgress, message, payload.OrderID)
}

func (c *Consumer) handlePayment(ctx context.Context, eventID string, data json.RawMessage) error {
	var payload paymentEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment payload: %w", err)
	}
	if payload.SellerID == uuid.Nil {
		return fmt.Errorf("seller id missing")
	}
	message := fmt.Sprintf("You received %s for %q (ref %s).", payload.Amount.StringFixed(2), payload.WorkTitle, payload.TransactionCode)
	return c.create(ctx, eventID, payload.SellerID, enums.NotificationTypePaymentReceived, message, payload.OrderID)
}

// create persists one notification keyed by the envelope event id, so a
// redelivered event lands on the unique index instead of a second row.
func (c *Consumer) create(ctx context.Context, eventID string, userID uuid.UUID, notifType enums.NotificationType, message string, orderID uuid.UUID) error {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
	}
	if eventID != "" {
		id := eventID
		notification.EventID = &id
	}
	if orderID != uuid.Nil {
		id := orderID
		notification.OrderID = &id
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		if db.IsUniqueViolation(err, "ux_notifications_event") {
			c.logg.Info(ctx, "notification already delivered, skipping")
			return nil
		}
		return err
	}
	c.logg.Info(ctx, "notification created")
	return nil
}
