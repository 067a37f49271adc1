package entity

import (
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
)

// Field names accepted by the form state controller. They double as validation
// map keys and mirror the names the rendering layer binds to.
const (
	FieldCustomerName         = "customerName"
	FieldCustomerPhone        = "customerPhone"
	FieldCustomerEmail        = "customerEmail"
	FieldCustomerAddress      = "customerAddress"
	FieldInvoiceStatus        = "invoiceStatus"
	FieldOwnerMessage         = "ownerMessage"
	FieldApplyItemDiscounts   = "applyItemDiscounts"
	FieldApplyOverallDiscount = "applyOverallDiscount"
	FieldOverallDiscount      = "overallDiscount"
	FieldOverallDiscountType  = "overallDiscountType"
	FieldFinalDiscount        = "finalDiscount"
	FieldFinalDiscountType    = "finalDiscountType"
	FieldPaymentMethod        = "paymentMethod"
	FieldPaymentDetails       = "paymentDetails"
	FieldIssuedBy             = "issuedBy"
	FieldIsCostPrice          = "isCostPrice"
	FieldEnableLogging        = "enableLogging"
)

// Item field names, keyed in the validation map as item_{index}_{field}.
const (
	ItemFieldName         = "name"
	ItemFieldPrice        = "price"
	ItemFieldQuantity     = "quantity"
	ItemFieldDiscount     = "discount"
	ItemFieldDiscountType = "discountType"
)

// SignatoryCustomer is the sentinel signatory value for self-service orders.
const SignatoryCustomer = "Customer"

// Item is a single invoice line. Numeric fields stay as the raw strings the
// form delivered; parsing happens in the pricing engine and at submit time.
type Item struct {
	Name         string            `json:"name"`
	Price        string            `json:"price"`
	Quantity     string            `json:"quantity"`
	Discount     string            `json:"discount"`
	DiscountType enum.DiscountType `json:"discountType"`
}

// NewItem returns a line item with the form's empty defaults.
func NewItem() Item {
	return Item{DiscountType: enum.DiscountTypeFlat}
}

// FormState is the full mutable state of one invoice form session.
type FormState struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerAddress string             `json:"customerAddress"`
	InvoiceStatus   enum.InvoiceStatus `json:"invoiceStatus"`
	OwnerMessage    string             `json:"ownerMessage"`

	Items []Item `json:"items"`

	ApplyItemDiscounts   bool              `json:"applyItemDiscounts"`
	ApplyOverallDiscount bool              `json:"applyOverallDiscount"`
	OverallDiscount      string            `json:"overallDiscount"`
	OverallDiscountType  enum.DiscountType `json:"overallDiscountType"`
	FinalDiscount        string            `json:"finalDiscount"`
	FinalDiscountType    enum.DiscountType `json:"finalDiscountType"`

	PaymentMethod  enum.PaymentMethod `json:"paymentMethod"`
	PaymentDetails string             `json:"paymentDetails"`

	IssuedBy      string `json:"issuedBy"`
	IsCostPrice   bool   `json:"isCostPrice"`
	EnableLogging bool   `json:"enableLogging"`
}

// NewFormState returns the initial form state: one empty item, status PAID,
// cash payment, logging on.
func NewFormState() *FormState {
	return &FormState{
		InvoiceStatus:       enum.InvoiceStatusPaid,
		Items:               []Item{NewItem()},
		OverallDiscountType: enum.DiscountTypeFlat,
		FinalDiscountType:   enum.DiscountTypeFlat,
		PaymentMethod:       enum.PaymentMethodCash,
		EnableLogging:       true,
	}
}

// Clone returns a deep copy of the form state.
func (f *FormState) Clone() *FormState {
	c := *f
	c.Items = make([]Item, len(f.Items))
	copy(c.Items, f.Items)
	return &c
}

// IsCustomer reports whether the form is issued by the self-service customer.
func (f *FormState) IsCustomer() bool {
	return f.IssuedBy == SignatoryCustomer
}
