package enum

// InvoiceStatus represents the lifecycle state of an invoice. Values match the
// wire format expected by the invoice-generation endpoint.
type InvoiceStatus string

const (
	InvoiceStatusPaid        InvoiceStatus = "PAID"
	InvoiceStatusQuotation   InvoiceStatus = "QUOTATION"
	InvoiceStatusOrderPlaced InvoiceStatus = "ORDER_PLACED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

// Valid reports whether the status is one of the known wire values.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusQuotation, InvoiceStatusOrderPlaced:
		return true
	}
	return false
}
