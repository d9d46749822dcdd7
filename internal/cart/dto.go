package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanvelez/shopcore-backend/pkg/db/models"
	"github.com/jordanvelez/shopcore-backend/pkg/enums"
)

// CartItemDTO is one cart line joined with its catalog product. Unavailable
// marks lines whose product has been removed or deactivated since it was
// added; such lines keep their snapshot but cannot be checked out as-is.
type CartItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// CartDTO is the external representation of a cart.
type CartDTO struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Status     enums.CartStatus `json:"status"`
	Items      []CartItemDTO    `json:"items"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// AddItemInput captures an add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// UpdateQuantityInput captures a quantity replacement request.
type UpdateQuantityInput struct {
	ProductID uuid.UUID
	Quantity  int
}

func toDTO(cart *models.Cart, items []models.CartItem, productsByID map[uuid.UUID]models.Product) *CartDTO {
	dto := &CartDTO{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Status:     cart.Status,
		Items:      make([]CartItemDTO, 0, len(items)),
		TotalPrice: cart.TotalPrice,
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, item := range items {
		line := CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
		if product, ok := productsByID[item.ProductID]; ok {
			line.ProductName = product.Name
			line.UnitPrice = product.Price
			line.Unavailable = !product.IsActive
		} else {
			line.Unavailable = true
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
