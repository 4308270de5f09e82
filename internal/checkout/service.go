package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/internal/cart"
	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
	"github.com/shopease/shopease-backend/pkg/metrics"
	"github.com/shopease/shopease-backend/pkg/razorpay"
	"github.com/shopease/shopease-backend/pkg/types"
)

// Service drives a scope's checkout from cart to confirmed payment.
//
// The flow is cart -> address -> payment -> completed. Payment confirmation
// verifies the gateway signature before anything else is touched; the cart
// is only cleared after a successful verification, so a failed or forged
// callback never loses the shopper's cart.
type Service interface {
	Begin(ctx context.Context, scope string) (*Session, error)
	Current(ctx context.Context, scope string) (*Session, error)
	SubmitAddress(ctx context.Context, scope string, address types.ShippingAddress) (*Session, error)
	CreateOrder(ctx context.Context, scope string, userID uuid.UUID) (*OrderIntent, error)
	ConfirmPayment(ctx context.Context, scope string, input ConfirmPaymentInput) (*models.Order, error)
	FailPayment(ctx context.Context, scope string, orderRef string) (*Session, error)
}

// OrderIntent is handed to the client so it can open the gateway's payment
// widget against the created order.
type OrderIntent struct {
	OrderID         uuid.UUID
	GatewayOrderRef string
	AmountPaise     int64
	Currency        string
	GatewayKeyID    string
}

// ConfirmPaymentInput carries the gateway's success callback parameters.
type ConfirmPaymentInput struct {
	OrderRef   string
	PaymentRef string
	Signature  string
}

// PlaceOrderInput is everything the orders layer needs to persist a pending order.
type PlaceOrderInput struct {
	UserID          uuid.UUID
	Lines           []cart.Line
	TotalPaise      int64
	Currency        string
	Address         types.ShippingAddress
	GatewayOrderRef string
}

type zoneChecker interface {
	ValidateDestination(ctx context.Context, city, pincode string) error
}

type orderPlacer interface {
	PlacePending(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	MarkPaid(ctx context.Context, gatewayRef, paymentRef string) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, gatewayRef string) (*models.Order, error)
	FindByGatewayRef(ctx context.Context, gatewayRef string) (*models.Order, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type service struct {
	carts    *cart.Manager
	sessions SessionStore
	zones    zoneChecker
	orders   orderPlacer
	gateway  paymentGateway
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Carts    *cart.Manager
	Sessions SessionStore
	Zones    zoneChecker
	Orders   orderPlacer
	Gateway  paymentGateway
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart manager is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Zones == nil {
		return nil, fmt.Errorf("zone checker is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order placer is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		carts:    params.Carts,
		sessions: params.Sessions,
		zones:    params.Zones,
		orders:   params.Orders,
		gateway:  params.Gateway,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

// Begin starts (or resumes) a checkout for the scope. The cart must not be empty.
func (s *service) Begin(ctx context.Context, scope string) (*Session, error) {
	store, err := s.carts.Get(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if store.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	existing, err := s.sessions.Load(ctx, scope)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	session := Session{
		Scope:     scope,
		Stage:     enums.CheckoutStageAddress,
		UpdatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return &session, nil
}

// Current returns the in-flight session for the scope.
func (s *service) Current(ctx context.Context, scope string) (*Session, error) {
	session, err := s.sessions.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	return &session, nil
}

// SubmitAddress validates the destination against the delivery zone
// allow-list and advances the session to the payment stage. Resubmitting the
// same address is idempotent; a different address is accepted until an order
// has been created.
func (s *service) SubmitAddress(ctx context.Context, scope string, address types.ShippingAddress) (*Session, error) {
	session, err := s.sessions.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has not been started")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if session.Stage == enums.CheckoutStageCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already completed")
	}

	address.Normalize()
	if address.Address == "" || address.City == "" || address.Pincode == "" || address.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address, city, pincode, and phone are required")
	}

	if session.Stage == enums.CheckoutStagePayment && session.Address != nil && session.Address.Equal(address) {
		return &session, nil
	}
	if session.GatewayOrderRef != "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already created, address can no longer change")
	}

	if err := s.zones.ValidateDestination(ctx, address.City, address.Pincode); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check delivery zone")
	}

	session.Address = &address
	session.Stage = enums.CheckoutStagePayment
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return &session, nil
}

// CreateOrder registers the order with the payment gateway and persists it
// as pending. Calling it again for the same session returns the existing
// intent instead of creating a duplicate gateway order.
func (s *service) CreateOrder(ctx context.Context, scope string, userID uuid.UUID) (*OrderIntent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}

	session, err := s.sessions.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has not been started")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if session.Stage != enums.CheckoutStagePayment || session.Address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipping address must be submitted first")
	}

	if session.GatewayOrderRef != "" {
		order, err := s.orders.FindByGatewayRef(ctx, session.GatewayOrderRef)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing order")
		}
		return &OrderIntent{
			OrderID:         order.ID,
			GatewayOrderRef: order.GatewayOrderRef,
			AmountPaise:     order.TotalPaise,
			Currency:        order.Currency,
			GatewayKeyID:    s.gateway.KeyID(),
		}, nil
	}

	store, err := s.carts.Get(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines := store.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	total := store.TotalPaise()

	started := s.now()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		AmountPaise: total,
		Currency:    "INR",
		Notes:       map[string]string{"scope": scope},
	})
	s.metrics.ObserveGatewayLatency("create_order", s.now().Sub(started))
	if err != nil {
		return nil, err
	}

	order, err := s.orders.PlacePending(ctx, PlaceOrderInput{
		UserID:          userID,
		Lines:           lines,
		TotalPaise:      total,
		Currency:        gatewayOrder.Currency,
		Address:         *session.Address,
		GatewayOrderRef: gatewayOrder.ID,
	})
	if err != nil {
		return nil, err
	}

	session.OrderID = order.ID
	session.GatewayOrderRef = gatewayOrder.ID
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}

	s.metrics.IncOrderCreated()
	return &OrderIntent{
		OrderID:         order.ID,
		GatewayOrderRef: gatewayOrder.ID,
		AmountPaise:     total,
		Currency:        gatewayOrder.Currency,
		GatewayKeyID:    s.gateway.KeyID(),
	}, nil
}

// ConfirmPayment handles the gateway success callback. The signature is
// verified first; only a verified payment marks the order paid, clears the
// cart, and ends the session. A callback carrying a stale order reference is
// rejected without touching anything.
func (s *service) ConfirmPayment(ctx context.Context, scope string, input ConfirmPaymentInput) (*models.Order, error) {
	if input.OrderRef == "" || input.PaymentRef == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference, payment reference, and signature are required")
	}

	session, err := s.sessions.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return s.confirmWithoutSession(ctx, input)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	if session.GatewayOrderRef == "" || session.GatewayOrderRef != input.OrderRef {
		s.metrics.IncPaymentResult("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment callback does not match the current order")
	}

	if !s.gateway.VerifySignature(input.OrderRef, input.PaymentRef, input.Signature) {
		s.metrics.IncPaymentResult("failed")
		if _, markErr := s.orders.MarkPaymentFailed(ctx, input.OrderRef); markErr != nil {
			s.logg.Error(ctx, "marking payment failed", markErr)
		}
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")
	}

	order, err := s.orders.MarkPaid(ctx, input.OrderRef, input.PaymentRef)
	if err != nil {
		return nil, err
	}

	// Cart clearing is deliberately last: a verification failure above must
	// leave the cart intact for a retry.
	if err := s.carts.Clear(ctx, scope); err != nil {
		s.logg.Error(ctx, "clearing cart after payment", err)
	}
	if err := s.sessions.Clear(ctx, scope); err != nil {
		s.logg.Error(ctx, "clearing checkout session", err)
	}

	s.metrics.IncPaymentResult("verified")
	return order, nil
}

// confirmWithoutSession resolves callbacks that arrive after the session was
// already cleared. A repeat of the exact callback that completed the order is
// acknowledged; anything else is stale.
func (s *service) confirmWithoutSession(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error) {
	order, err := s.orders.FindByGatewayRef(ctx, input.OrderRef)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no checkout in progress for this order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid &&
		order.GatewayPaymentRef != nil && *order.GatewayPaymentRef == input.PaymentRef &&
		s.gateway.VerifySignature(input.OrderRef, input.PaymentRef, input.Signature) {
		return order, nil
	}
	s.metrics.IncPaymentResult("rejected")
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no checkout in progress for this order")
}

// FailPayment records a client-reported gateway failure or dismissal. The
// session returns to the payment stage so the shopper can retry; the cart is
// untouched.
func (s *service) FailPayment(ctx context.Context, scope string, orderRef string) (*Session, error) {
	session, err := s.sessions.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no checkout in progress")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if orderRef == "" || session.GatewayOrderRef != orderRef {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment callback does not match the current order")
	}

	if _, err := s.orders.MarkPaymentFailed(ctx, orderRef); err != nil {
		return nil, err
	}

	session.Stage = enums.CheckoutStagePayment
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}

	s.metrics.IncPaymentResult("failed")
	return &session, nil
}
