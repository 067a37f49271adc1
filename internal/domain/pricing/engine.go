// Package pricing is the pure calculation engine for the invoice form. It has
// no side effects and never errors: malformed numeric input degrades to a zero
// contribution, and range policing is the controller's job, not the engine's.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
)

// Input carries everything the engine needs from the form state.
type Input struct {
	Items                []entity.Item
	ApplyItemDiscounts   bool
	ApplyOverallDiscount bool
	OverallDiscount      string
	OverallDiscountType  enum.DiscountType
	FinalDiscount        string
	FinalDiscountType    enum.DiscountType
}

// Compute derives the full calculation result from the form state. Stages run
// in fixed order: per-item totals, subtotal, overall discount, final
// adjustment, floor at zero. Each percent discount is taken against its own
// stage's base, never an earlier or later one.
func Compute(in Input) entity.CalculationResult {
	itemTotals := make([]entity.ItemTotal, 0, len(in.Items))
	var subtotalBeforeOverall float64

	for _, item := range in.Items {
		price, priceOK := ParseAmount(item.Price)
		quantity, quantityOK := ParseQuantity(item.Quantity)
		if !priceOK || !quantityOK {
			itemTotals = append(itemTotals, entity.ItemTotal{
				BaseTotal: Format(0),
				Discount:  Format(0),
				Total:     Format(0),
			})
			continue
		}

		baseTotal := price * float64(quantity)
		var itemDiscount float64
		if in.ApplyItemDiscounts {
			if d, ok := ParseAmount(item.Discount); ok {
				itemDiscount = discountAmount(d, item.DiscountType, baseTotal)
			}
		}

		itemTotal := baseTotal - itemDiscount
		itemTotals = append(itemTotals, entity.ItemTotal{
			BaseTotal: Format(baseTotal),
			Discount:  Format(itemDiscount),
			Total:     Format(itemTotal),
		})
		subtotalBeforeOverall += itemTotal
	}

	var overallDiscountAmount float64
	if in.ApplyOverallDiscount {
		if d, ok := ParseAmount(in.OverallDiscount); ok {
			overallDiscountAmount = discountAmount(d, in.OverallDiscountType, subtotalBeforeOverall)
		}
	}
	subtotalAfterOverall := subtotalBeforeOverall - overallDiscountAmount

	// The final adjustment is always live, independent of any toggle.
	var finalDiscountAmount float64
	if d, ok := ParseAmount(in.FinalDiscount); ok {
		finalDiscountAmount = discountAmount(d, in.FinalDiscountType, subtotalAfterOverall)
	}

	finalAmount := math.Max(0, subtotalAfterOverall-finalDiscountAmount)

	return entity.CalculationResult{
		ItemTotals:            itemTotals,
		SubtotalBeforeOverall: Format(subtotalBeforeOverall),
		OverallDiscountAmount: Format(overallDiscountAmount),
		SubtotalAfterOverall:  Format(subtotalAfterOverall),
		FinalDiscountAmount:   Format(finalDiscountAmount),
		FinalAmount:           Format(finalAmount),
	}
}

func discountAmount(value float64, t enum.DiscountType, base float64) float64 {
	if t == enum.DiscountTypePercent {
		return base * value / 100
	}
	return value
}

// ParseAmount parses a monetary form value. Empty or malformed input reports
// not-ok rather than an error.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQuantity parses a quantity form value. Fractional input truncates
// toward zero, matching how the form always handled it.
func ParseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Format renders a monetary amount with exactly two decimal places.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
