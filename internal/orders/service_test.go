package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/outbox"
	"github.com/skillbazaar/backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	purchases map[uuid.UUID]*models.Purchase
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:    map[uuid.UUID]*models.Order{},
		purchases: map[uuid.UUID]*models.Purchase{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListOpenOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListUserOrders(ctx context.Context, userID uuid.UUID, role enums.OrderRole, params pagination.Params) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) FindPurchaseByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	if purchase, ok := s.purchases[id]; ok {
		return purchase, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindLatestPurchaseByOrder(ctx context.Context, orderID uuid.UUID) (*models.Purchase, error) {
	var latest *models.Purchase
	for _, purchase := range s.purchases {
		if purchase.OrderID != orderID {
			continue
		}
		if latest == nil || purchase.CreatedAt.After(latest.CreatedAt) {
			latest = purchase
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (s *stubOrdersRepo) FindPurchaseIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, purchase := range s.purchases {
		if purchase.OrderID == orderID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *stubOrdersRepo) UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	purchase, ok := s.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"]; ok {
		purchase.Status = status.(enums.PurchaseStatus)
	}
	if decision, ok := updates["decision"]; ok {
		purchase.Decision = decision.(enums.PurchaseDecision)
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrderProjection(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, buyerID *uuid.UUID) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	if buyerID != nil {
		order.BuyerID = buyerID
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	repo     *stubOrdersRepo
	outbox   *stubOutbox
	svc      Service
	seller   uuid.UUID
	buyer    uuid.UUID
	order    *models.Order
	purchase *models.Purchase
}

func newFixture(t *testing.T, status enums.PurchaseStatus, decision enums.PurchaseDecision) *fixture {
	t.Helper()

	repo := newStubOrdersRepo()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, ob)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	sellerID := uuid.New()
	buyerID := uuid.New()
	order := &models.Order{
		ID:        uuid.New(),
		WorkTitle: "Logo design",
		Rate:      decimal.NewFromInt(500),
		SellerID:  sellerID,
		Status:    enums.OrderStatusPending,
		Seller:    &models.User{ID: sellerID, Name: "Seller"},
	}
	purchase := &models.Purchase{
		ID:       uuid.New(),
		OrderID:  order.ID,
		BuyerID:  buyerID,
		Status:   status,
		Decision: decision,
		Amount:   order.Rate,
	}
	repo.orders[order.ID] = order
	repo.purchases[purchase.ID] = purchase

	return &fixture{repo: repo, outbox: ob, svc: svc, seller: sellerID, buyer: buyerID, order: order, purchase: purchase}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestTransitionHappyPath(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionAccepted)

	view, err := f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleSold,
		OrderID:     f.order.ID,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if view.PurchaseStatus != enums.PurchaseStatusInProgress {
		t.Fatalf("expected in_progress, got %s", view.PurchaseStatus)
	}
	if view.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected projected order status in_progress, got %s", view.Status)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderProgressed {
		t.Fatalf("expected one order.progressed event, got %+v", f.outbox.events)
	}
}

func TestTransitionFullLifecycle(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionAccepted)
	ctx := context.Background()

	steps := []enums.PurchaseStatus{enums.PurchaseStatusInProgress, enums.PurchaseStatusCompleted}
	for _, target := range steps {
		if _, err := f.svc.Transition(ctx, TransitionInput{
			Role:        enums.OrderRoleSold,
			OrderID:     f.order.ID,
			ActorUserID: f.seller,
			NewStatus:   target,
		}); err != nil {
			t.Fatalf("transition to %s returned error: %v", target, err)
		}
	}

	// Completing twice must fail.
	_, err := f.svc.Transition(ctx, TransitionInput{
		Role:        enums.OrderRoleSold,
		OrderID:     f.order.ID,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusCompleted,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestTransitionRejectsEveryIllegalPair(t *testing.T) {
	statuses := []enums.PurchaseStatus{
		enums.PurchaseStatusPending,
		enums.PurchaseStatusInProgress,
		enums.PurchaseStatusCompleted,
		enums.PurchaseStatusCancelled,
	}
	legal := map[[2]enums.PurchaseStatus]bool{
		{enums.PurchaseStatusPending, enums.PurchaseStatusInProgress}:   true,
		{enums.PurchaseStatusInProgress, enums.PurchaseStatusCompleted}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if legal[[2]enums.PurchaseStatus{from, to}] {
				continue
			}
			f := newFixture(t, from, enums.PurchaseDecisionAccepted)
			_, err := f.svc.Transition(context.Background(), TransitionInput{
				Role:        enums.OrderRoleSold,
				OrderID:     f.order.ID,
				ActorUserID: f.seller,
				NewStatus:   to,
			})
			assertCode(t, err, pkgerrors.CodeStateConflict)
		}
	}
}

func TestTransitionDeclinedPurchaseNeverMoves(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionDeclined)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleSold,
		OrderID:     f.order.ID,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestTransitionEnforcesRoles(t *testing.T) {
	stranger := uuid.New()

	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionAccepted)
	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleSold,
		OrderID:     f.order.ID,
		ActorUserID: stranger,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// Buyer role is checked against the purchase's buyer, even for a legal move.
	_, err = f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleBought,
		OrderID:     f.order.ID,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleBought,
		OrderID:     f.order.ID,
		ActorUserID: f.buyer,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	if err != nil {
		t.Fatalf("buyer transition returned error: %v", err)
	}
}

func TestTransitionResolvesByExplicitPurchaseID(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionAccepted)

	view, err := f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleSold,
		PurchaseID:  &f.purchase.ID,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if view.PurchaseID == nil || *view.PurchaseID != f.purchase.ID {
		t.Fatal("view must reference the resolved purchase")
	}
}

func TestTransitionMissingPurchaseListsSiblings(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionAccepted)
	bogus := uuid.New()

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		Role:        enums.OrderRoleSold,
		OrderID:     f.order.ID,
		PurchaseID:  &bogus,
		ActorUserID: f.seller,
		NewStatus:   enums.PurchaseStatusInProgress,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected sibling details, got %#v", appErr.Details())
	}
	siblings, ok := details["order_purchase_ids"].([]uuid.UUID)
	if !ok || len(siblings) != 1 || siblings[0] != f.purchase.ID {
		t.Fatalf("expected sibling purchase ids, got %#v", details)
	}
}

func TestDecisionAcceptAndDecline(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionPending)

	view, err := f.svc.Decision(context.Background(), DecisionInput{
		OrderID:     f.order.ID,
		Decision:    SellerDecisionAccept,
		ActorUserID: f.seller,
	})
	if err != nil {
		t.Fatalf("Decision returned error: %v", err)
	}
	if view.Decision != enums.PurchaseDecisionAccepted {
		t.Fatalf("expected accepted, got %s", view.Decision)
	}
	if view.Status != enums.OrderStatusAccepted {
		t.Fatalf("expected projected accepted, got %s", view.Status)
	}

	// Decision is one-shot.
	_, err = f.svc.Decision(context.Background(), DecisionInput{
		OrderID:     f.order.ID,
		Decision:    SellerDecisionDecline,
		ActorUserID: f.seller,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestDecisionDeclineCancelsPurchase(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionPending)

	view, err := f.svc.Decision(context.Background(), DecisionInput{
		OrderID:     f.order.ID,
		Decision:    SellerDecisionDecline,
		ActorUserID: f.seller,
	})
	if err != nil {
		t.Fatalf("Decision returned error: %v", err)
	}
	if view.PurchaseStatus != enums.PurchaseStatusCancelled {
		t.Fatalf("expected cancelled purchase, got %s", view.PurchaseStatus)
	}
	if view.Status != enums.OrderStatusDeclined {
		t.Fatalf("expected projected declined, got %s", view.Status)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderDecided {
		t.Fatalf("expected one order.decided event, got %+v", f.outbox.events)
	}
}

func TestDecisionOnlySeller(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionPending)

	_, err := f.svc.Decision(context.Background(), DecisionInput{
		OrderID:     f.order.ID,
		Decision:    SellerDecisionAccept,
		ActorUserID: f.buyer,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending, enums.PurchaseDecisionPending)

	_, err := f.svc.Create(context.Background(), CreateInput{
		WorkTitle: "  ",
		Rate:      decimal.NewFromInt(100),
		SellerID:  f.seller,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(context.Background(), CreateInput{
		WorkTitle: "Tutoring",
		Rate:      decimal.Zero,
		SellerID:  f.seller,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}
