package enum

// DiscountType represents how a discount value is interpreted: a fixed currency
// amount or a percentage of the relevant base.
type DiscountType string

const (
	DiscountTypeFlat    DiscountType = "FLAT"
	DiscountTypePercent DiscountType = "PERCENT"
)

func (t DiscountType) String() string {
	return string(t)
}

// Valid reports whether the discount type is a known wire value.
func (t DiscountType) Valid() bool {
	return t == DiscountTypeFlat || t == DiscountTypePercent
}
