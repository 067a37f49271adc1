package service

import (
	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
)

// transition is a named cross-field rule that runs after a field update has
// been applied. The rules run in declaration order, once per update, so a
// single UpdateField call observes all of its side effects atomically.
type transition struct {
	name  string
	apply func(form *entity.FormState, field string, value any)
}

var fieldTransitions = []transition{
	{name: "cost-price-toggles-logging", apply: costPriceTogglesLogging},
	{name: "customer-signatory-reset", apply: customerSignatoryReset},
}

// costPriceTogglesLogging forces logging off while a transaction is marked as
// cost price, and back on when the mark is removed. The overwrite is
// unconditional: a prior manual logging choice is not remembered.
func costPriceTogglesLogging(form *entity.FormState, field string, value any) {
	if field != entity.FieldIsCostPrice {
		return
	}
	on, ok := value.(bool)
	if !ok {
		return
	}
	form.EnableLogging = !on
}

// customerSignatoryReset applies the self-service rules when the Customer
// signatory is selected: the order is force-set to ORDER_PLACED and every
// price and discount is rewritten to zero. The reset is destructive; values
// are not restored when switching back to a staff signatory.
func customerSignatoryReset(form *entity.FormState, field string, value any) {
	if field != entity.FieldIssuedBy {
		return
	}
	if !form.IsCustomer() {
		return
	}

	form.InvoiceStatus = enum.InvoiceStatusOrderPlaced
	for i := range form.Items {
		form.Items[i].Price = "0"
		form.Items[i].Discount = "0"
	}
	form.OverallDiscount = "0"
	form.FinalDiscount = "0"
	form.ApplyItemDiscounts = false
	form.ApplyOverallDiscount = false
}
