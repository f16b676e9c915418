package order

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input is everything an order is built from. Items are copied; later
// changes to the caller's slice or the source cart do not reach the order.
type Input struct {
	OwnerID       string
	Items         []LineItem
	Customer      Customer
	PaymentMethod PaymentMethod
	TaxRate       decimal.Decimal
	CreatedBy     string
	Notes         string
}

// profile holds what differs between the two creation paths.
type profile struct {
	source          Source
	initialDelivery DeliveryStatus
}

var (
	storefrontProfile = profile{source: SourceStorefront, initialDelivery: DeliveryPending}
	adminProfile      = profile{source: SourceAdmin, initialDelivery: DeliveryProcessing}
)

// Factory turns validated input into orders. Ids are unique for the life of
// the process.
type Factory struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	now   func() time.Time
	newID func(time.Time) string
}

func NewFactory() *Factory {
	return &Factory{
		seen:  make(map[string]struct{}),
		now:   time.Now,
		newID: GenerateOrderID,
	}
}

var defaultFactory = NewFactory()

// CreateStorefrontOrder builds an order as placed from the public
// storefront: delivery starts pending.
func CreateStorefrontOrder(in Input) (*Order, error) {
	return defaultFactory.CreateStorefrontOrder(in)
}

// CreateAdminOrder builds an order assembled in the admin console: delivery
// starts processing.
func CreateAdminOrder(in Input) (*Order, error) {
	return defaultFactory.CreateAdminOrder(in)
}

func (f *Factory) CreateStorefrontOrder(in Input) (*Order, error) {
	return f.create(in, storefrontProfile)
}

func (f *Factory) CreateAdminOrder(in Input) (*Order, error) {
	return f.create(in, adminProfile)
}

func (f *Factory) create(in Input, p profile) (*Order, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	items := make([]LineItem, len(in.Items))
	subtotal := decimal.Zero
	for i, it := range in.Items {
		it.LineTotal = money.Line(it.UnitPrice, it.Quantity)
		items[i] = it
		subtotal = subtotal.Add(it.LineTotal)
	}
	tax := money.ApplyRate(subtotal, in.TaxRate)

	createdAt := f.now()
	o := &Order{
		ID:             f.uniqueID(createdAt),
		OwnerID:        in.OwnerID,
		Items:          items,
		Customer:       trimCustomer(in.Customer),
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  initialPaymentStatus(in.PaymentMethod),
		DeliveryStatus: p.initialDelivery,
		Notes:          in.Notes,
		Subtotal:       subtotal,
		Tax:            tax,
		TaxRate:        in.TaxRate,
		Total:          subtotal.Add(tax),
		Source:         p.source,
		CreatedAt:      createdAt,
		CreatedBy:      in.CreatedBy,
	}
	return o, nil
}

// initialPaymentStatus treats cash as settled at the counter.
func initialPaymentStatus(m PaymentMethod) PaymentStatus {
	if m == PaymentCash {
		return PaymentPaid
	}
	return PaymentPending
}

func (f *Factory) uniqueID(at time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		id := f.newID(at)
		if _, dup := f.seen[id]; !dup {
			f.seen[id] = struct{}{}
			return id
		}
	}
}

// GenerateOrderID returns a time-prefixed token such as
// ORD-20261018-150405-1a2b3c4d.
func GenerateOrderID(at time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102-150405"), token)
}

// Validate checks the input rules shared by both profiles.
func Validate(in Input) error {
	if strings.TrimSpace(in.Customer.Name) == "" {
		return invalid("customer.name", "is required")
	}
	if strings.TrimSpace(in.Customer.Contact()) == "" {
		return invalid("customer.contact", "email or phone is required")
	}
	if !in.PaymentMethod.IsValid() {
		return invalid("paymentMethod", fmt.Sprintf("unknown method %q", in.PaymentMethod))
	}
	if in.TaxRate.IsNegative() {
		return invalid("taxRate", "must not be negative")
	}
	if len(in.Items) == 0 {
		return invalid("items", emptyReason)
	}
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if it.UnitPrice.IsNegative() {
			return invalid(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative")
		}
	}
	return nil
}

func trimCustomer(c Customer) Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// LineItemsFromCart converts cart lines into order rows.
func LineItemsFromCart(items []cart.CartItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{
			ProductID:    it.ProductID,
			VariantIndex: it.VariantIndex,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.Price,
		})
	}
	return out
}
