package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a deposit destination published by the administrator.
type PaymentMethod struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	QRRef     string    `json:"qr_ref,omitempty"` // Opaque reference to an uploaded QR image
	CreatedAt time.Time `json:"created_at"`
}
