package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/internal/checkout"
	"github.com/shopease/shopease-backend/internal/products"
	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns order persistence and lifecycle. Placement runs in a single
// transaction that decrements stock, so two buyers cannot both take the last
// unit.
type Service interface {
	PlacePending(ctx context.Context, input checkout.PlaceOrderInput) (*models.Order, error)
	MarkPaid(ctx context.Context, gatewayRef, paymentRef string) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, gatewayRef string) (*models.Order, error)
	FindByGatewayRef(ctx context.Context, gatewayRef string) (*models.Order, error)

	History(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	AdminList(ctx context.Context, filter ListFilter) ([]OrderDTO, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	tx   txRunner
	repo *Repository
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	TX txRunner
	DB *gorm.DB
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TX == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	return &service{
		tx:   params.TX,
		repo: NewRepository(params.DB),
		now:  time.Now,
	}, nil
}

// PlacePending persists a pending order, freezing line prices and reserving
// stock atomically.
func (s *service) PlacePending(ctx context.Context, input checkout.PlaceOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if input.GatewayOrderRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order reference is required")
	}

	var statePtr *string
	if input.Address.State != "" {
		state := input.Address.State
		statePtr = &state
	}
	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	order := &models.Order{
		UserID:          input.UserID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusCreated,
		TotalPaise:      input.TotalPaise,
		Currency:        currency,
		GatewayOrderRef: input.GatewayOrderRef,
		ShippingAddress: input.Address.Address,
		ShippingCity:    input.Address.City,
		ShippingState:   statePtr,
		ShippingPincode: input.Address.Pincode,
		ShippingPhone:   input.Address.Phone,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := products.NewRepository(tx)

		for _, line := range input.Lines {
			product, err := productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q is no longer available", line.Name))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is no longer available", product.Name))
			}
			if err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("not enough stock for %q", product.Name))
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:      line.ProductID,
				ProductName:    line.Name,
				UnitPricePaise: line.UnitPricePaise,
				Quantity:       line.Quantity,
				SubtotalPaise:  line.SubtotalPaise(),
			})
		}

		return NewRepository(tx).Create(ctx, order)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
	}
	return order, nil
}

// MarkPaid transitions the order to paid/confirmed after signature verification.
func (s *service) MarkPaid(ctx context.Context, gatewayRef, paymentRef string) (*models.Order, error) {
	order, err := s.findByGatewayRef(ctx, gatewayRef)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return order, nil
	}

	now := s.now().UTC()
	order.PaymentStatus = enums.PaymentStatusPaid
	order.Status = enums.OrderStatusConfirmed
	order.GatewayPaymentRef = &paymentRef
	order.PaidAt = &now
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
	}
	return order, nil
}

// MarkPaymentFailed records a failed or abandoned payment attempt. The order
// stays pending so a retry against the same gateway order can still succeed.
func (s *service) MarkPaymentFailed(ctx context.Context, gatewayRef string) (*models.Order, error) {
	order, err := s.findByGatewayRef(ctx, gatewayRef)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	order.PaymentStatus = enums.PaymentStatusFailed
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
	}
	return order, nil
}

// FindByGatewayRef loads an order by its gateway order reference.
func (s *service) FindByGatewayRef(ctx context.Context, gatewayRef string) (*models.Order, error) {
	return s.findByGatewayRef(ctx, gatewayRef)
}

// History returns the user's orders, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(orders), nil
}

// GetForUser returns a single order, refusing to leak other users' orders.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

// AdminList returns orders for the admin dashboard.
func (s *service) AdminList(ctx context.Context, filter ListFilter) ([]OrderDTO, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(orders), nil
}

// AdminGet returns any order by id.
func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

// UpdateStatus moves the order along the fulfilment ladder.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}
	order, err := s.findByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	order.Status = next
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
	}
	return FromModel(order), nil
}

func (s *service) findByGatewayRef(ctx context.Context, gatewayRef string) (*models.Order, error) {
	if gatewayRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order reference is required")
	}
	order, err := s.repo.FindByGatewayRef(ctx, gatewayRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) findByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
