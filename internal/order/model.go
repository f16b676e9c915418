package order

import (
	"slices"
	"strings"
	"time"

	"shopdesk-be/internal/cart"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEFT          PaymentMethod = "eft"
	PaymentPayFast      PaymentMethod = "payfast"
	PaymentPaystack     PaymentMethod = "paystack"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentEFT, PaymentPayFast, PaymentPaystack:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// IsTerminal reports the statuses nothing progresses from in normal flow.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

type DeliveryStatus string

const (
	DeliveryPending      DeliveryStatus = "pending"
	DeliveryProcessing   DeliveryStatus = "processing"
	DeliveryInTransit    DeliveryStatus = "in_transit"
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNotDelivered DeliveryStatus = "not_delivered"
)

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliveryProcessing, DeliveryInTransit, DeliveryDelivered, DeliveryNotDelivered:
		return true
	}
	return false
}

func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryNotDelivered
}

// Source tells which creation profile produced an order.
type Source string

const (
	SourceStorefront Source = "storefront"
	SourceAdmin      Source = "admin"
)

// normalize lower-cases and trims a stored enum string.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(normalize(s))
	return m, m.IsValid()
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(normalize(s))
	return st, st.IsValid()
}

func ParseDeliveryStatus(s string) (DeliveryStatus, bool) {
	st := DeliveryStatus(normalize(s))
	return st, st.IsValid()
}

// LineItem is a frozen order row.
type LineItem struct {
	ProductID    string          `json:"productId"`
	VariantIndex int             `json:"variantIndex"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Contact is the first non-empty of email and phone.
func (c Customer) Contact() string {
	if strings.TrimSpace(c.Email) != "" {
		return c.Email
	}
	return c.Phone
}

// Order is an immutable snapshot. Only payment status, delivery status,
// payment method and notes change after creation, through ApplyUpdate.
type Order struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"uid"`
	Items          []LineItem      `json:"items"`
	Customer       Customer        `json:"customer"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	DeliveryStatus DeliveryStatus  `json:"deliveryStatus"`
	Notes          string          `json:"notes,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	Total          decimal.Decimal `json:"total"`
	Source         Source          `json:"source"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Receipt summarises o for the cart's confirmation screen.
func (o Order) Receipt() cart.Receipt {
	return cart.Receipt{
		OrderID:   o.ID,
		ItemCount: o.ItemCount(),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}

// StatusUpdate carries the admin-editable fields. Nil fields are left as is.
type StatusUpdate struct {
	PaymentStatus  *PaymentStatus  `json:"paymentStatus,omitempty"`
	DeliveryStatus *DeliveryStatus `json:"deliveryStatus,omitempty"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

func (u StatusUpdate) IsEmpty() bool {
	return u.PaymentStatus == nil && u.DeliveryStatus == nil && u.PaymentMethod == nil && u.Notes == nil
}
