package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jordanvelez/shopcore-backend/internal/cart"
	"github.com/jordanvelez/shopcore-backend/internal/payments"
	"github.com/jordanvelez/shopcore-backend/pkg/config"
	"github.com/jordanvelez/shopcore-backend/pkg/db/models"
	"github.com/jordanvelez/shopcore-backend/pkg/enums"
	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
	"github.com/jordanvelez/shopcore-backend/pkg/pagination"
)

// Service exposes order operations.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	PayOrder(ctx context.Context, userID uuid.UUID, input PayOrderInput) (*PaymentReceipt, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo     OrderRepository
	carts    cart.CartRepository
	products catalog
	payments charger
	tx       txRunner
	locks    locker
	cartCfg  config.CartConfig
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	OrderRepo  OrderRepository
	CartRepo   cart.CartRepository
	Catalog    catalog
	Payments   charger
	TxRunner   txRunner
	Locker     locker
	CartConfig config.CartConfig
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment processor is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("cart locker is required")
	}
	return &service{
		repo:     params.OrderRepo,
		carts:    params.CartRepo,
		products: params.Catalog,
		payments: params.Payments,
		tx:       params.TxRunner,
		locks:    params.Locker,
		cartCfg:  params.CartConfig,
	}, nil
}

// PlaceOrder converts the user's active cart into a pending order. The cart
// lock serializes conversion against concurrent cart mutations; line items
// snapshot the product name and price at placement time.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	token, ok, err := s.locks.AcquireCartLock(ctx, userID.String(), s.cartCfg.LockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is being modified by another request")
	}
	defer func() {
		_ = s.locks.ReleaseCartLock(context.WithoutCancel(ctx), userID.String(), token)
	}()

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		activeCart, err := cartRepo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return err
		}
		if len(activeCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		productIDs := make([]uuid.UUID, 0, len(activeCart.Items))
		for _, item := range activeCart.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		rows, err := s.products.ListByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		productsByID := make(map[uuid.UUID]models.Product, len(rows))
		for _, row := range rows {
			productsByID[row.ID] = row
		}

		items := make([]models.OrderItem, 0, len(activeCart.Items))
		for _, line := range activeCart.Items {
			product, found := productsByID[line.ProductID]
			if !found || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart contains an unavailable product")
			}
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    line.Subtotal,
			})
		}

		created, err := s.repo.WithTx(tx).Create(ctx, &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			TotalAmount:     activeCart.TotalPrice,
			ShippingAddress: address,
			Items:           items,
		})
		if err != nil {
			return err
		}
		order = created

		return cartRepo.UpdateStatus(ctx, activeCart.ID, enums.CartStatusConverted)
	})
	if err != nil {
		return nil, translate(err, "place order")
	}

	return ToDTO(order), nil
}

// PayOrder charges the stub processor for a pending order and marks it paid.
func (s *service) PayOrder(ctx context.Context, userID uuid.UUID, input PayOrderInput) (*PaymentReceipt, error) {
	order, err := s.loadOwnedOrder(ctx, userID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is not awaiting payment")
	}

	result, err := s.payments.Charge(ctx, payments.ChargeInput{
		CardNumber: input.CardNumber,
		CardExpiry: input.CardExpiry,
		CardCVV:    input.CardCVV,
		Amount:     order.TotalAmount,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	order.Status = enums.OrderStatusPaid

	return &PaymentReceipt{
		Order:         ToDTO(order),
		TransactionID: result.TransactionID,
		Amount:        result.Amount,
		ProcessedAt:   result.ProcessedAt,
	}, nil
}

// GetOrder returns the user's order by id.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// ListOrders returns one page of the user's order history.
func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, input)
	if err != nil {
		return nil, translate(err, "list orders")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		result.HasMore = true
		rows = rows[:limit]
	}
	for i := range rows {
		result.Orders = append(result.Orders, *ToDTO(&rows[i]))
	}
	if result.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// CancelOrder cancels the user's order while its status still allows it.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusCanceled) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("order in status %q cannot be canceled", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCanceled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	order.Status = enums.OrderStatusCanceled
	return ToDTO(order), nil
}

// DeleteOrder removes the user's order while it is still pending.
func (s *service) DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be deleted")
	}

	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// UpdateStatus moves an order along its lifecycle; used by admin flows.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, translate(err, "load order")
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot transition order from %q to %q", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	return ToDTO(order), nil
}

func (s *service) loadOwnedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, translate(err, "load order")
	}
	return order, nil
}

func translate(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, op+" timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
