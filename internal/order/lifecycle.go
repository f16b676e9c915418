package order

import "fmt"

// Post-creation edits follow the admin console: any valid status may be set
// at any time, so the two tracks are flat enums rather than a guarded graph.
// The graph below only describes the normal forward flow; ApplyUpdate does
// not consult it.

var paymentFlow = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentPaid, PaymentFailed},
	PaymentProcessing: {PaymentPaid, PaymentFailed},
}

var deliveryFlow = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:    {DeliveryProcessing, DeliveryInTransit, DeliveryNotDelivered},
	DeliveryProcessing: {DeliveryInTransit, DeliveryNotDelivered},
	DeliveryInTransit:  {DeliveryDelivered, DeliveryNotDelivered},
}

// NextPaymentStatuses lists the forward steps from s.
func NextPaymentStatuses(s PaymentStatus) []PaymentStatus {
	return append([]PaymentStatus(nil), paymentFlow[s]...)
}

// NextDeliveryStatuses lists the forward steps from s.
func NextDeliveryStatuses(s DeliveryStatus) []DeliveryStatus {
	return append([]DeliveryStatus(nil), deliveryFlow[s]...)
}

// IsForward reports whether from → to is a step of the normal payment flow.
func (s PaymentStatus) IsForward(to PaymentStatus) bool {
	for _, n := range paymentFlow[s] {
		if n == to {
			return true
		}
	}
	return false
}

// IsForward reports whether from → to is a step of the normal delivery flow.
func (s DeliveryStatus) IsForward(to DeliveryStatus) bool {
	for _, n := range deliveryFlow[s] {
		if n == to {
			return true
		}
	}
	return false
}

// ApplyUpdate returns a copy of o with the editable fields in u applied.
// Values must belong to their enum; line items, customer and totals are
// never touched.
func (o Order) ApplyUpdate(u StatusUpdate) (Order, error) {
	if u.IsEmpty() {
		return o, ErrNothingToEdit
	}

	out := o.Clone()
	if u.PaymentStatus != nil {
		if !u.PaymentStatus.IsValid() {
			return o, invalid("paymentStatus", fmt.Sprintf("unknown status %q", *u.PaymentStatus))
		}
		out.PaymentStatus = *u.PaymentStatus
	}
	if u.DeliveryStatus != nil {
		if !u.DeliveryStatus.IsValid() {
			return o, invalid("deliveryStatus", fmt.Sprintf("unknown status %q", *u.DeliveryStatus))
		}
		out.DeliveryStatus = *u.DeliveryStatus
	}
	if u.PaymentMethod != nil {
		if !u.PaymentMethod.IsValid() {
			return o, invalid("paymentMethod", fmt.Sprintf("unknown method %q", *u.PaymentMethod))
		}
		out.PaymentMethod = *u.PaymentMethod
	}
	if u.Notes != nil {
		out.Notes = *u.Notes
	}
	return out, nil
}
