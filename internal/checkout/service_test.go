package checkout

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopease/shopease-backend/internal/cart"
	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
	"github.com/shopease/shopease-backend/pkg/razorpay"
	"github.com/shopease/shopease-backend/pkg/types"
)

type stubZones struct {
	pincodesByCity map[string][]string
}

func (s *stubZones) ValidateDestination(_ context.Context, city, pincode string) error {
	var cities []string
	var cityPincodes []string
	for name, pincodes := range s.pincodesByCity {
		cities = append(cities, name)
		if strings.EqualFold(name, city) {
			cityPincodes = pincodes
		}
	}
	if cityPincodes == nil {
		sort.Strings(cities)
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("delivery is not available in %s", city)).
			WithDetails(map[string]any{"field": "city", "allowed": cities})
	}
	for _, candidate := range cityPincodes {
		if candidate == pincode {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("delivery is not available for pincode %s in %s", pincode, city)).
		WithDetails(map[string]any{"field": "pincode", "allowed": cityPincodes})
}

type stubOrders struct {
	byRef       map[string]*models.Order
	placed      int
	paidCalls   int
	failedCalls int
}

func newStubOrders() *stubOrders {
	return &stubOrders{byRef: map[string]*models.Order{}}
}

func (s *stubOrders) PlacePending(_ context.Context, input PlaceOrderInput) (*models.Order, error) {
	s.placed++
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusCreated,
		TotalPaise:      input.TotalPaise,
		Currency:        input.Currency,
		GatewayOrderRef: input.GatewayOrderRef,
		ShippingCity:    input.Address.City,
		ShippingPincode: input.Address.Pincode,
	}
	s.byRef[input.GatewayOrderRef] = order
	return order, nil
}

func (s *stubOrders) MarkPaid(_ context.Context, gatewayRef, paymentRef string) (*models.Order, error) {
	order, ok := s.byRef[gatewayRef]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.paidCalls++
	order.PaymentStatus = enums.PaymentStatusPaid
	order.Status = enums.OrderStatusConfirmed
	order.GatewayPaymentRef = &paymentRef
	return order, nil
}

func (s *stubOrders) MarkPaymentFailed(_ context.Context, gatewayRef string) (*models.Order, error) {
	order, ok := s.byRef[gatewayRef]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.failedCalls++
	order.PaymentStatus = enums.PaymentStatusFailed
	return order, nil
}

func (s *stubOrders) FindByGatewayRef(_ context.Context, gatewayRef string) (*models.Order, error) {
	order, ok := s.byRef[gatewayRef]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

type stubGateway struct {
	created int
}

func (g *stubGateway) CreateOrder(_ context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	g.created++
	return &razorpay.Order{
		ID:          fmt.Sprintf("order_stub%d", g.created),
		AmountPaise: req.AmountPaise,
		Currency:    "INR",
		Status:      "created",
	}, nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "sig:"+orderID+"|"+paymentID
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

type fixture struct {
	service  Service
	carts    *cart.Manager
	sessions *MemorySessionStore
	orders   *stubOrders
	gateway  *stubGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	carts, err := cart.NewManager(cart.NewMemoryPersistence(), logg, nil)
	require.NoError(t, err)
	sessions := NewMemorySessionStore()
	orders := newStubOrders()
	gateway := &stubGateway{}
	zones := &stubZones{pincodesByCity: map[string][]string{"Haldwani": {"263139", "263126"}}}

	service, err := NewService(ServiceParams{
		Carts:    carts,
		Sessions: sessions,
		Zones:    zones,
		Orders:   orders,
		Gateway:  gateway,
		Logger:   logg,
	})
	require.NoError(t, err)
	return &fixture{service: service, carts: carts, sessions: sessions, orders: orders, gateway: gateway}
}

func (f *fixture) fillCart(t *testing.T, scope string) {
	t.Helper()
	_, err := f.carts.Add(context.Background(), scope, cart.Line{
		ProductID: uuid.New(), Name: "Studio Headphones", UnitPricePaise: 14999, Quantity: 3,
	})
	require.NoError(t, err)
	_, err = f.carts.Add(context.Background(), scope, cart.Line{
		ProductID: uuid.New(), Name: "Bookshelf Speaker", UnitPricePaise: 25000, Quantity: 1,
	})
	require.NoError(t, err)
}

func haldwaniAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Address: "12 Mall Road",
		City:    "Haldwani",
		State:   "Uttarakhand",
		Pincode: "263139",
		Phone:   "9876543210",
	}
}

func (f *fixture) advanceToIntent(t *testing.T, scope string, userID uuid.UUID) *OrderIntent {
	t.Helper()
	ctx := context.Background()
	f.fillCart(t, scope)
	_, err := f.service.Begin(ctx, scope)
	require.NoError(t, err)
	_, err = f.service.SubmitAddress(ctx, scope, haldwaniAddress())
	require.NoError(t, err)
	intent, err := f.service.CreateOrder(ctx, scope, userID)
	require.NoError(t, err)
	return intent
}

func TestBeginRequiresNonEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Begin(context.Background(), "user:42")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSubmitAddressRejectsUnserviceablePincode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "user:42")
	_, err := f.service.Begin(ctx, "user:42")
	require.NoError(t, err)

	mumbai := types.ShippingAddress{
		Address: "7 Marine Drive",
		City:    "Mumbai",
		State:   "Maharashtra",
		Pincode: "400001",
		Phone:   "9876543210",
	}
	_, err = f.service.SubmitAddress(ctx, "user:42", mumbai)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Contains(t, typed.Message(), "Mumbai")

	// the session is still waiting at the address stage
	session, err := f.service.Current(ctx, "user:42")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStageAddress, session.Stage)
}

func TestSubmitAddressRejectsCityMismatchForCoveredPincode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "user:42")
	_, err := f.service.Begin(ctx, "user:42")
	require.NoError(t, err)

	// 263139 is allow-listed, but for Haldwani, not Mumbai
	mismatched := types.ShippingAddress{
		Address: "7 Marine Drive",
		City:    "Mumbai",
		State:   "Maharashtra",
		Pincode: "263139",
		Phone:   "9876543210",
	}
	_, err = f.service.SubmitAddress(ctx, "user:42", mismatched)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Contains(t, typed.Message(), "Mumbai")

	session, err := f.service.Current(ctx, "user:42")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStageAddress, session.Stage)
	require.Nil(t, session.Address)
}

func TestSubmitAddressAcceptsCityCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "user:42")
	_, err := f.service.Begin(ctx, "user:42")
	require.NoError(t, err)

	address := haldwaniAddress()
	address.City = "haldwani"
	session, err := f.service.SubmitAddress(ctx, "user:42", address)
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStagePayment, session.Stage)
}

func TestSubmitAddressAdvancesToPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "user:42")
	_, err := f.service.Begin(ctx, "user:42")
	require.NoError(t, err)

	session, err := f.service.SubmitAddress(ctx, "user:42", haldwaniAddress())
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStagePayment, session.Stage)
	require.NotNil(t, session.Address)

	// resubmitting the identical address is a no-op
	again, err := f.service.SubmitAddress(ctx, "user:42", haldwaniAddress())
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStagePayment, again.Stage)
}

func TestCreateOrderUsesCartTotalAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	intent := f.advanceToIntent(t, "user:42", userID)

	require.EqualValues(t, 69997, intent.AmountPaise)
	require.Equal(t, "INR", intent.Currency)
	require.Equal(t, "rzp_test_key", intent.GatewayKeyID)
	require.Equal(t, 1, f.orders.placed)

	repeat, err := f.service.CreateOrder(context.Background(), "user:42", userID)
	require.NoError(t, err)
	require.Equal(t, intent.GatewayOrderRef, repeat.GatewayOrderRef)
	require.Equal(t, 1, f.gateway.created)
	require.Equal(t, 1, f.orders.placed)
}

func TestCreateOrderRequiresAddressStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "user:42")
	_, err := f.service.Begin(ctx, "user:42")
	require.NoError(t, err)

	_, err = f.service.CreateOrder(ctx, "user:42", uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestConfirmPaymentFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	intent := f.advanceToIntent(t, "user:42", uuid.New())

	_, err := f.service.ConfirmPayment(ctx, "user:42", ConfirmPaymentInput{
		OrderRef:   intent.GatewayOrderRef,
		PaymentRef: "pay_123",
		Signature:  "forged",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodePaymentVerification, typed.Code())

	store, err := f.carts.Get(ctx, "user:42")
	require.NoError(t, err)
	require.False(t, store.IsEmpty())
	require.EqualValues(t, 69997, store.TotalPaise())

	session, err := f.service.Current(ctx, "user:42")
	require.NoError(t, err)
	require.Equal(t, intent.GatewayOrderRef, session.GatewayOrderRef)
	require.Equal(t, 1, f.orders.failedCalls)
}

func TestConfirmPaymentClearsCartAfterVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	intent := f.advanceToIntent(t, "user:42", uuid.New())

	order, err := f.service.ConfirmPayment(ctx, "user:42", ConfirmPaymentInput{
		OrderRef:   intent.GatewayOrderRef,
		PaymentRef: "pay_123",
		Signature:  "sig:" + intent.GatewayOrderRef + "|pay_123",
	})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)

	store, err := f.carts.Get(ctx, "user:42")
	require.NoError(t, err)
	require.True(t, store.IsEmpty())

	_, err = f.service.Current(ctx, "user:42")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestConfirmPaymentRejectsStaleOrderRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.advanceToIntent(t, "user:42", uuid.New())

	_, err := f.service.ConfirmPayment(ctx, "user:42", ConfirmPaymentInput{
		OrderRef:   "order_someone_elses",
		PaymentRef: "pay_123",
		Signature:  "sig:order_someone_elses|pay_123",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	require.Equal(t, 0, f.orders.paidCalls)
}

func TestConfirmPaymentRepeatAfterCompletionIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	intent := f.advanceToIntent(t, "user:42", uuid.New())

	input := ConfirmPaymentInput{
		OrderRef:   intent.GatewayOrderRef,
		PaymentRef: "pay_123",
		Signature:  "sig:" + intent.GatewayOrderRef + "|pay_123",
	}
	_, err := f.service.ConfirmPayment(ctx, "user:42", input)
	require.NoError(t, err)

	order, err := f.service.ConfirmPayment(ctx, "user:42", input)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.Equal(t, 1, f.orders.paidCalls)
}

func TestFailPaymentReturnsSessionToPaymentStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	intent := f.advanceToIntent(t, "user:42", uuid.New())

	session, err := f.service.FailPayment(ctx, "user:42", intent.GatewayOrderRef)
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStagePayment, session.Stage)
	require.Equal(t, 1, f.orders.failedCalls)

	store, err := f.carts.Get(ctx, "user:42")
	require.NoError(t, err)
	require.False(t, store.IsEmpty())

	// the shopper can retry the same gateway order
	repeat, err := f.service.CreateOrder(ctx, "user:42", uuid.New())
	require.NoError(t, err)
	require.Equal(t, intent.GatewayOrderRef, repeat.GatewayOrderRef)
}
