package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item. A nil Price means the item is not for sale.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
}

// Purchasable reports whether the product can be put into the basket
func (p Product) Purchasable() bool {
	return p.Price != nil
}

// Order is the in-progress checkout, submitted as-is to the remote API
type Order struct {
	Payment string   `json:"payment"`
	Address string   `json:"address"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Total   float64  `json:"total"`
	Items   []string `json:"items"`
}

// Clone returns a copy that does not share the items slice
func (o Order) Clone() Order {
	cp := o
	cp.Items = make([]string, len(o.Items))
	copy(cp.Items, o.Items)
	return cp
}

// Get returns the value of a form field
func (o Order) Get(field OrderField) string {
	switch field {
	case FieldPayment:
		return o.Payment
	case FieldAddress:
		return o.Address
	case FieldEmail:
		return o.Email
	case FieldPhone:
		return o.Phone
	default:
		return ""
	}
}

// Set writes a form field. Unknown fields are ignored.
func (o *Order) Set(field OrderField, value string) {
	switch field {
	case FieldPayment:
		o.Payment = value
	case FieldAddress:
		o.Address = value
	case FieldEmail:
		o.Email = value
	case FieldPhone:
		o.Phone = value
	}
}

// OrderResult is the remote API answer to an order submission
type OrderResult struct {
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}

// FormErrors maps a field to its user-facing validation message
type FormErrors map[OrderField]string

// Valid reports whether no field failed validation
func (e FormErrors) Valid() bool {
	return len(e) == 0
}

// Messages returns the messages of the given fields in field order, skipping passing ones
func (e FormErrors) Messages(fields ...OrderField) []string {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		if msg, ok := e[f]; ok && msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// OrderRecord is a journal entry written after a successful submission
type OrderRecord struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	RemoteID  string    `json:"remote_id"`
	Payment   string    `json:"payment"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Total     float64   `json:"total"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}
