// Package validation holds the per-field rules the form applies as the user
// types. The rules are asymmetric on purpose: numeric and discount fields
// treat empty as "not yet entered" and therefore valid, while generic string
// fields are invalid when empty. Form-level required checks live in the form
// service, which is what makes the field-level leniency safe.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rayypan/invoicegeneration/internal/domain/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Field reports whether value is valid for the named field type. Boolean
// fields never reach this function; the controller skips them.
func Field(fieldType, value string) bool {
	switch fieldType {
	case entity.FieldCustomerEmail:
		return value == "" || emailPattern.MatchString(value)
	case entity.FieldCustomerPhone:
		return value == "" || phonePattern.MatchString(value)
	case entity.ItemFieldPrice, entity.ItemFieldQuantity:
		return value == "" || parsesPositive(value)
	case entity.ItemFieldDiscount, entity.FieldOverallDiscount, entity.FieldFinalDiscount:
		return value == "" || parsesNonNegative(value)
	default:
		return strings.TrimSpace(value) != ""
	}
}

// Email reports whether value has the local@domain.tld shape.
func Email(value string) bool {
	return emailPattern.MatchString(value)
}

// Phone reports whether value is exactly ten digits.
func Phone(value string) bool {
	return phonePattern.MatchString(value)
}

// ItemKey builds the validation map key for an item field.
func ItemKey(index int, field string) string {
	return fmt.Sprintf("item_%d_%s", index, field)
}

func parsesPositive(value string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && v > 0
}

func parsesNonNegative(value string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && v >= 0
}
