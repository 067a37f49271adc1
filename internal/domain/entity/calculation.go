package entity

// ItemTotal is the computed amounts for a single line item, formatted to two
// decimal places.
type ItemTotal struct {
	BaseTotal string `json:"baseTotal"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

// CalculationResult is the derived pricing view of a form state. It is
// recomputed in full on every mutation and never patched in place.
type CalculationResult struct {
	ItemTotals            []ItemTotal `json:"itemTotals"`
	SubtotalBeforeOverall string      `json:"subtotalBeforeOverall"`
	OverallDiscountAmount string      `json:"overallDiscountAmount"`
	SubtotalAfterOverall  string      `json:"subtotalAfterOverall"`
	FinalDiscountAmount   string      `json:"finalDiscountAmount"`
	FinalAmount           string      `json:"finalAmount"`
}
