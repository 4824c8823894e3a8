package booking

import (
	"strings"

	"staybook/internal/pkg/apperror"
)

var (
	ErrInvalidStatus        = apperror.Invalid("booking.invalid_status", "invalid booking status")
	ErrInvalidPaymentStatus = apperror.Invalid("booking.invalid_payment_status", "invalid payment status")
	ErrInvalidPaymentMethod = apperror.Invalid("booking.invalid_payment_method", "invalid payment method")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentFailed:
		return s, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodPayPal       PaymentMethod = "paypal"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case MethodCreditCard, MethodPayPal, MethodBankTransfer:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
