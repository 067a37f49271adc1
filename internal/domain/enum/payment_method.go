package enum

// PaymentMethod represents how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// Valid reports whether the payment method is a known wire value.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}
