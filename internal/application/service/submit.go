package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
	"github.com/rayypan/invoicegeneration/internal/domain/pricing"
	"github.com/rayypan/invoicegeneration/internal/generator"
	"github.com/rayypan/invoicegeneration/pkg/apperror"
)

// invoiceDateLayout is the day-month-year stamp the generation endpoint
// expects.
const invoiceDateLayout = "02-01-2006"

// Submit validates the form, builds the payload, and delivers it to the
// generation endpoint. Only one submission per session may be in flight; a
// second attempt while the gate is held fails fast. On success the whole
// session resets to defaults; on any failure the state is left untouched so
// the user can correct and resubmit.
func (s *FormService) Submit(ctx context.Context, id uuid.UUID) (string, *Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return "", nil, err
	}

	session.Lock()

	if session.Submitting {
		session.Unlock()
		return "", nil, apperror.ErrSubmitInFlight
	}

	form := session.Form
	passwordOK := form.IssuedBy == "" || form.IsCustomer() || session.PasswordValid

	if valid := s.validateLocked(session); !valid {
		errs := fieldErrors(session.Validations)
		session.Touch()
		if err := s.sessions.Save(ctx, session); err != nil {
			session.Unlock()
			return "", nil, err
		}
		session.Unlock()
		if !passwordOK {
			return "", nil, apperror.ErrInvalidPassword
		}
		return "", nil, apperror.NewValidationError(errs)
	}

	payload := s.buildPayload(form)

	session.Submitting = true
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		session.Submitting = false
		session.Unlock()
		return "", nil, err
	}
	session.Unlock()

	// The gate stays held for the full round trip; there is no cancellation
	// of an in-flight generation.
	message, submitErr := s.submitter.Generate(ctx, payload)

	session.Lock()
	session.Submitting = false

	if submitErr != nil {
		session.Touch()
		if err := s.sessions.Save(ctx, session); err != nil {
			// The submission outcome matters more than the store write.
			s.log.WithField("session_id", id).WithError(err).Error("failed to save session after submission failure")
		}
		session.Unlock()

		s.log.WithFields(logrus.Fields{
			"session_id": id,
			"issued_by":  payload.IssuedBy,
		}).WithError(submitErr).Warn("invoice submission failed")
		return "", nil, mapSubmitError(submitErr)
	}

	// Full reset: form, validations, password. Nothing partial.
	session.Form = entity.NewFormState()
	session.Validations = make(map[string]bool)
	session.Password = ""
	session.PasswordValid = false
	s.recompute(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		session.Unlock()
		return "", nil, err
	}

	snap := s.snapshot(session)
	session.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id": id,
		"status":     payload.InvoiceStatus,
		"issued_by":  payload.IssuedBy,
	}).Info("invoice submitted")

	return message, snap, nil
}

// buildPayload re-derives every monetary field from the raw form state at
// submit time; the cached calculation result is display-only. Customer
// submissions ship with all money zeroed regardless of what the form holds.
func (s *FormService) buildPayload(form *entity.FormState) *generator.InvoicePayload {
	isCustomer := form.IsCustomer()

	items := make([]generator.ItemPayload, 0, len(form.Items))
	for _, item := range form.Items {
		price, _ := pricing.ParseAmount(item.Price)
		if isCustomer {
			price = 0
		}
		quantity, _ := pricing.ParseQuantity(item.Quantity)

		var discount float64
		if !isCustomer && form.ApplyItemDiscounts {
			discount, _ = pricing.ParseAmount(item.Discount)
		}
		discountType := enum.DiscountTypeFlat
		if form.ApplyItemDiscounts {
			discountType = item.DiscountType
		}

		items = append(items, generator.ItemPayload{
			Name:         item.Name,
			Price:        price,
			Quantity:     quantity,
			Discount:     discount,
			DiscountType: discountType,
		})
	}

	applyOverall := form.ApplyOverallDiscount && !isCustomer
	var overallDiscount float64
	if !isCustomer && form.ApplyOverallDiscount {
		overallDiscount, _ = pricing.ParseAmount(form.OverallDiscount)
	}
	overallDiscountType := enum.DiscountTypeFlat
	if form.ApplyOverallDiscount {
		overallDiscountType = form.OverallDiscountType
	}

	var adjustment float64
	if !isCustomer {
		adjustment, _ = pricing.ParseAmount(form.FinalDiscount)
	}

	paymentDetails := ""
	if form.PaymentMethod == enum.PaymentMethodOnline {
		paymentDetails = form.PaymentDetails
	}

	return &generator.InvoicePayload{
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerEmail:   form.CustomerEmail,
		CustomerAddress: form.CustomerAddress,

		InvoiceStatus: form.InvoiceStatus,
		OwnerMessage:  form.OwnerMessage,
		InvoiceDate:   s.now().Format(invoiceDateLayout),

		Items: items,

		ApplyOverallDiscount: applyOverall,
		OverallDiscount:      overallDiscount,
		OverallDiscountType:  overallDiscountType,

		AdjustmentAmount:     adjustment,
		AdjustmentAmountType: form.FinalDiscountType,

		PaymentMethod:  form.PaymentMethod,
		PaymentDetails: paymentDetails,

		IssuedBy:      form.IssuedBy,
		EnableLogging: form.EnableLogging,
	}
}

func mapSubmitError(err error) error {
	var rejected *generator.RejectedError
	if errors.As(err, &rejected) {
		return apperror.NewUpstreamRejectedError(rejected.Body)
	}
	var transport *generator.TransportError
	if errors.As(err, &transport) {
		return apperror.NewUpstreamUnreachableError(transport.Err.Error())
	}
	return apperror.GetAppError(err)
}

func fieldErrors(validations map[string]bool) []apperror.FieldError {
	fields := make([]string, 0, len(validations))
	for field, ok := range validations {
		if !ok {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	errs := make([]apperror.FieldError, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, apperror.FieldError{Field: field, Message: "Required field missing or invalid"})
	}
	return errs
}
