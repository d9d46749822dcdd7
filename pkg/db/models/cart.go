package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanvelez/shopcore-backend/pkg/enums"
)

// Cart is the per-user mutable collection of intended purchases.
//
// At most one active cart exists per user (partial unique index on
// user_id WHERE status = 'active'). TotalPrice is derived: it always equals
// the sum of the item subtotals and is recomputed on every mutation, never
// trusted incrementally.
type Cart struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Status     enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	TotalPrice decimal.Decimal  `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
