package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
)

// Cards that do not start with "4" are declined, as are charges above this
// amount. Stands in for a real processor.
var maxChargeAmount = decimal.NewFromInt(1000)

// ChargeInput captures the card details and amount for a charge attempt.
type ChargeInput struct {
	CardNumber string
	CardExpiry string
	CardCVV    string
	Amount     decimal.Decimal
}

// ChargeResult describes a settled charge.
type ChargeResult struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	ProcessedAt   time.Time       `json:"processed_at"`
}

// Service exposes the payment processing surface.
type Service interface {
	Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error)
}

type service struct{}

// NewService constructs the stub payment processor.
func NewService() Service {
	return &service{}
}

// Charge validates the card and settles the amount.
func (s *service) Charge(_ context.Context, input ChargeInput) (*ChargeResult, error) {
	number := strings.ReplaceAll(strings.TrimSpace(input.CardNumber), " ", "")
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card number is required")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if !strings.HasPrefix(number, "4") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card declined")
	}
	if input.Amount.GreaterThan(maxChargeAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount exceeds limit")
	}

	return &ChargeResult{
		TransactionID: uuid.NewString(),
		Amount:        input.Amount,
		ProcessedAt:   time.Now().UTC(),
	}, nil
}
