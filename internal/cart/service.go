package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jordanvelez/shopcore-backend/pkg/config"
	"github.com/jordanvelez/shopcore-backend/pkg/db/models"
	"github.com/jordanvelez/shopcore-backend/pkg/enums"
	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
)

var errLockBusy = errors.New("cart lock busy")

// Service exposes cart operations. Every mutation runs under the per-user
// cart lock and inside a transaction, so concurrent requests against the same
// cart serialize instead of clobbering each other's read-modify-write cycles.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products catalog
	locks    locker
	cfg      config.CartConfig
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products catalog, locks locker, cfg config.CartConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if locks == nil {
		return nil, fmt.Errorf("cart locker required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		locks:    locks,
		cfg:      cfg,
	}, nil
}

// GetCart returns the user's active cart. The read is retried on transient
// failures; an absent cart is NOT_FOUND, never created here.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	cart, err := s.findCartWithRetry(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, s.translate(err, "load cart")
	}

	return s.buildDTO(ctx, cart, cart.Items)
}

// GetOrCreateCart returns the user's active cart, creating an empty one when
// absent. The create is attempted once, never retried.
func (s *service) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	cart, err := s.findCartWithRetry(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart, err = s.repo.Create(ctx, &models.Cart{
			UserID:     userID,
			Status:     enums.CartStatusActive,
			TotalPrice: decimal.Zero,
		})
	}
	if err != nil {
		return nil, s.translate(err, "load cart")
	}

	return s.buildDTO(ctx, cart, cart.Items)
}

func (s *service) findCartWithRetry(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := retry.Do(ctx, s.readBackoff(), func(ctx context.Context) error {
		found, err := s.repo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		cart = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem merges the requested quantity into the user's active cart. The unit
// price is re-read from the catalog so the subtotal reflects the current
// price even when the product was added earlier at a different one.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	return s.mutate(ctx, userID, true, func(ctx context.Context, repo CartRepository, cart *models.Cart) error {
		product, err := s.loadActiveProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}

		quantity := input.Quantity
		existing, err := repo.FindItem(ctx, cart.ID, input.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			quantity += existing.Quantity
		}

		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: input.ProductID,
			Quantity:  quantity,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		}
		if err := repo.UpsertItem(ctx, item); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, repo, cart)
	})
}

// UpdateItemQuantity replaces the line quantity. A quantity of zero or less
// removes the line instead. The line must already be in the cart either way.
func (s *service) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, userID, false, func(ctx context.Context, repo CartRepository, cart *models.Cart) error {
		if _, err := repo.FindItem(ctx, cart.ID, input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
			}
			return err
		}

		if input.Quantity <= 0 {
			if _, err := repo.DeleteItem(ctx, cart.ID, input.ProductID); err != nil {
				return err
			}
			return s.recomputeTotal(ctx, repo, cart)
		}

		product, err := s.loadActiveProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}

		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		}
		if err := repo.UpsertItem(ctx, item); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, repo, cart)
	})
}

// RemoveItem deletes the line item. Removing a product that is not in the
// cart is a no-op, not an error.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, userID, false, func(ctx context.Context, repo CartRepository, cart *models.Cart) error {
		if _, err := repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, repo, cart)
	})
}

// ClearCart removes every item and zeroes the total.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	return s.mutate(ctx, userID, false, func(ctx context.Context, repo CartRepository, cart *models.Cart) error {
		if err := repo.DeleteAllItems(ctx, cart.ID); err != nil {
			return err
		}
		return repo.UpdateTotal(ctx, cart.ID, decimal.Zero)
	})
}

// mutate runs fn under the per-user cart lock, inside a transaction, against
// the user's active cart, then reloads the cart state. Only AddItem opts into
// creating an absent cart; every other mutation on a missing cart is NOT_FOUND.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, createWhenAbsent bool, fn func(ctx context.Context, repo CartRepository, cart *models.Cart) error) (*CartDTO, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	token, err := s.acquireLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer s.releaseLock(userID, token)

	var cart *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadCartForWrite(ctx, repo, userID, createWhenAbsent)
		if err != nil {
			return err
		}
		cart = loaded
		return fn(ctx, repo, cart)
	})
	if err != nil {
		return nil, s.translate(err, "mutate cart")
	}

	reloaded, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, s.translate(err, "reload cart")
	}
	return s.buildDTO(ctx, reloaded, reloaded.Items)
}

func (s *service) loadCartForWrite(ctx context.Context, repo CartRepository, userID uuid.UUID, createWhenAbsent bool) (*models.Cart, error) {
	cart, err := repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !createWhenAbsent {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return repo.Create(ctx, &models.Cart{
		UserID:     userID,
		Status:     enums.CartStatusActive,
		TotalPrice: decimal.Zero,
	})
}

func (s *service) loadActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// recomputeTotal re-derives the cart total from its line items. The total is
// never adjusted incrementally.
func (s *service) recomputeTotal(ctx context.Context, repo CartRepository, cart *models.Cart) error {
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return repo.UpdateTotal(ctx, cart.ID, total)
}

func (s *service) buildDTO(ctx context.Context, cart *models.Cart, items []models.CartItem) (*CartDTO, error) {
	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	productsByID := map[uuid.UUID]models.Product{}
	if len(productIDs) > 0 {
		var rows []models.Product
		err := retry.Do(ctx, s.readBackoff(), func(ctx context.Context) error {
			loaded, err := s.products.ListByIDs(ctx, productIDs)
			if err != nil {
				return retry.RetryableError(err)
			}
			rows = loaded
			return nil
		})
		if err != nil {
			return nil, s.translate(err, "load cart products")
		}
		for _, row := range rows {
			productsByID[row.ID] = row
		}
	}

	return toDTO(cart, items, productsByID), nil
}

func (s *service) acquireLock(ctx context.Context, userID uuid.UUID) (string, error) {
	var token string
	backoff := retry.WithMaxRetries(uint64(s.cfg.LockMaxRetries), retry.NewFibonacci(s.cfg.LockRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		acquired, ok, err := s.locks.AcquireCartLock(ctx, userID.String(), s.cfg.LockTTL)
		if err != nil {
			return retry.RetryableError(err)
		}
		if !ok {
			return retry.RetryableError(errLockBusy)
		}
		token = acquired
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "cart lock wait timed out")
		}
		if errors.Is(err, errLockBusy) {
			return "", pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart is being modified by another request")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	return token, nil
}

// releaseLock runs on a fresh context so an expired request deadline cannot
// leave the lock held until its TTL.
func (s *service) releaseLock(userID uuid.UUID, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LockTTL)
	defer cancel()
	_ = s.locks.ReleaseCartLock(ctx, userID.String(), token)
}

func (s *service) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

func (s *service) readBackoff() retry.Backoff {
	base := s.cfg.LockRetryBackoff
	if base <= 0 {
		base = 25 * time.Millisecond
	}
	return retry.WithMaxRetries(uint64(s.cfg.ReadMaxRetries), retry.NewFibonacci(base))
}

func (s *service) translate(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, op+" timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
