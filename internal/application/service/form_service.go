package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
	"github.com/rayypan/invoicegeneration/internal/domain/pricing"
	"github.com/rayypan/invoicegeneration/internal/domain/repository"
	"github.com/rayypan/invoicegeneration/internal/domain/validation"
	"github.com/rayypan/invoicegeneration/internal/generator"
	"github.com/rayypan/invoicegeneration/pkg/apperror"
)

// Submitter delivers a finished payload to the invoice generation endpoint.
type Submitter interface {
	Generate(ctx context.Context, payload *generator.InvoicePayload) (string, error)
}

// FormService is the form state controller. It owns every mutation of a form
// session: field updates with their cross-field transition rules, item
// management, password gating, validation, and submission orchestration. All
// events on one session run under the session lock, one at a time.
type FormService struct {
	sessions  repository.SessionRepository
	secrets   repository.SecretRepository
	submitter Submitter
	log       *logrus.Logger
	now       func() time.Time
}

// NewFormService creates a new form service.
func NewFormService(
	sessions repository.SessionRepository,
	secrets repository.SecretRepository,
	submitter Submitter,
	log *logrus.Logger,
) *FormService {
	return &FormService{
		sessions:  sessions,
		secrets:   secrets,
		submitter: submitter,
		log:       log,
		now:       time.Now,
	}
}

// Snapshot is the read view handed to the rendering layer: state, derived
// totals, validation results, and the visibility flags it renders from.
type Snapshot struct {
	ID           uuid.UUID                `json:"id"`
	Form         *entity.FormState        `json:"form"`
	Calculations entity.CalculationResult `json:"calculations"`
	Validations  map[string]bool          `json:"validations"`

	IsCustomer            bool `json:"isCustomer"`
	ShowPaymentAndLogging bool `json:"showPaymentAndLogging"`
	IsPasswordValid       bool `json:"isPasswordValid"`
	IsSubmitting          bool `json:"isSubmitting"`
}

// CreateSession starts a fresh form session with default state.
func (s *FormService) CreateSession(ctx context.Context) (*Snapshot, error) {
	session := entity.NewFormSession()
	s.recompute(session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log.WithField("session_id", session.ID).Info("form session created")
	return s.snapshot(session), nil
}

// GetSession returns the current snapshot of a session.
func (s *FormService) GetSession(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()
	return s.snapshot(session), nil
}

// DeleteSession discards a session.
func (s *FormService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, session.ID)
}

// UpdateField applies a single field update: the base assignment, the ordered
// transition rules, and field-level validation. Boolean toggles are applied
// but never validated.
func (s *FormService) UpdateField(ctx context.Context, id uuid.UUID, field string, value any) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	if err := setField(session.Form, field, value); err != nil {
		return nil, err
	}

	// Choosing a signatory always invalidates the entered password, even when
	// the same signatory is reselected.
	if field == entity.FieldIssuedBy {
		session.Password = ""
		session.PasswordValid = false
	}

	for _, tr := range fieldTransitions {
		tr.apply(session.Form, field, value)
	}

	if str, ok := value.(string); ok {
		session.Validations[field] = validation.Field(field, str)
	}

	s.recompute(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// AddItem appends an empty line item.
func (s *FormService) AddItem(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	session.Form.Items = append(session.Form.Items, entity.NewItem())

	s.recompute(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// RemoveItem removes the item at index. The last remaining item can never be
// removed.
func (s *FormService) RemoveItem(ctx context.Context, id uuid.UUID, index int) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	items := session.Form.Items
	if len(items) <= 1 {
		return nil, apperror.ErrLastItem
	}
	if index < 0 || index >= len(items) {
		return nil, apperror.NewBadRequestError("Invalid item index")
	}
	session.Form.Items = append(items[:index], items[index+1:]...)

	s.recompute(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// UpdateItem applies a single item field update and its field-level
// validation, keyed item_{index}_{field}.
func (s *FormService) UpdateItem(ctx context.Context, id uuid.UUID, index int, field, value string) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	if index < 0 || index >= len(session.Form.Items) {
		return nil, apperror.NewBadRequestError("Invalid item index")
	}
	if err := setItemField(&session.Form.Items[index], field, value); err != nil {
		return nil, err
	}

	session.Validations[validation.ItemKey(index, field)] = validation.Field(field, value)

	s.recompute(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// SetPassword records the entered password and compares it against the
// configured secret for the selected signatory. A signatory without a
// configured secret can never validate.
func (s *FormService) SetPassword(ctx context.Context, id uuid.UUID, password string) (*Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	session.Password = password
	secret, ok := s.secrets.Lookup(session.Form.IssuedBy)
	session.PasswordValid = ok && password == secret

	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// ValidateForm runs form-level validation, replacing the whole validity map,
// and reports overall pass/fail.
func (s *FormService) ValidateForm(ctx context.Context, id uuid.UUID) (bool, *Snapshot, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return false, nil, err
	}

	session.Lock()
	defer session.Unlock()

	valid := s.validateLocked(session)
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return false, nil, err
	}
	return valid, s.snapshot(session), nil
}

// Signatories returns the configured signatory roster for the dropdown.
func (s *FormService) Signatories() []string {
	return s.secrets.Signatories()
}

// validateLocked rebuilds the validity map from scratch. Caller holds the
// session lock.
func (s *FormService) validateLocked(session *entity.FormSession) bool {
	form := session.Form
	valid := true
	validations := make(map[string]bool)

	required := []string{
		entity.FieldCustomerName,
		entity.FieldCustomerPhone,
		entity.FieldCustomerEmail,
		entity.FieldCustomerAddress,
		entity.FieldIssuedBy,
	}
	for _, field := range required {
		value := fieldValue(form, field)
		fieldValid := strings.TrimSpace(value) != ""
		if fieldValid && field == entity.FieldCustomerEmail {
			fieldValid = validation.Email(value)
		}
		if fieldValid && field == entity.FieldCustomerPhone {
			fieldValid = validation.Phone(value)
		}
		validations[field] = fieldValid
		if !fieldValid {
			valid = false
		}
	}

	// A staff signatory must have proven the password before anything ships.
	if form.IssuedBy != "" && !form.IsCustomer() && !session.PasswordValid {
		valid = false
	}

	isCustomer := form.IsCustomer()
	for i, item := range form.Items {
		fields := []string{entity.ItemFieldName, entity.ItemFieldQuantity}
		if !isCustomer {
			fields = append(fields, entity.ItemFieldPrice)
		}
		for _, field := range fields {
			value := itemValue(item, field)
			fieldValid := strings.TrimSpace(value) != ""
			if fieldValid && (field == entity.ItemFieldPrice || field == entity.ItemFieldQuantity) {
				v, ok := pricing.ParseAmount(value)
				fieldValid = ok && v > 0
			}
			validations[validation.ItemKey(i, field)] = fieldValid
			if !fieldValid {
				valid = false
			}
		}
	}

	if !isCustomer && session.PasswordValid && form.PaymentMethod == enum.PaymentMethodOnline {
		hasDetails := strings.TrimSpace(form.PaymentDetails) != ""
		validations[entity.FieldPaymentDetails] = hasDetails
		if !hasDetails {
			valid = false
		}
	}

	session.Validations = validations
	return valid
}

func (s *FormService) recompute(session *entity.FormSession) {
	form := session.Form
	session.Calculations = pricing.Compute(pricing.Input{
		Items:                form.Items,
		ApplyItemDiscounts:   form.ApplyItemDiscounts,
		ApplyOverallDiscount: form.ApplyOverallDiscount,
		OverallDiscount:      form.OverallDiscount,
		OverallDiscountType:  form.OverallDiscountType,
		FinalDiscount:        form.FinalDiscount,
		FinalDiscountType:    form.FinalDiscountType,
	})
}

func (s *FormService) getSession(ctx context.Context, id uuid.UUID) (*entity.FormSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFoundError("Session")
	}
	return session, nil
}

// snapshot copies the session into a read view. Caller holds the session lock.
func (s *FormService) snapshot(session *entity.FormSession) *Snapshot {
	form := session.Form
	validations := make(map[string]bool, len(session.Validations))
	for k, v := range session.Validations {
		validations[k] = v
	}

	return &Snapshot{
		ID:                    session.ID,
		Form:                  form.Clone(),
		Calculations:          session.Calculations,
		Validations:           validations,
		IsCustomer:            form.IsCustomer(),
		ShowPaymentAndLogging: form.IssuedBy != "" && !form.IsCustomer() && session.PasswordValid,
		IsPasswordValid:       session.PasswordValid,
		IsSubmitting:          session.Submitting,
	}
}

// setField applies the base assignment for an updateField call. Unknown
// fields and type mismatches are rejected before any transition runs.
func setField(form *entity.FormState, field string, value any) error {
	switch v := value.(type) {
	case bool:
		switch field {
		case entity.FieldApplyItemDiscounts:
			form.ApplyItemDiscounts = v
		case entity.FieldApplyOverallDiscount:
			form.ApplyOverallDiscount = v
		case entity.FieldIsCostPrice:
			form.IsCostPrice = v
		case entity.FieldEnableLogging:
			form.EnableLogging = v
		default:
			return apperror.NewBadRequestError("Unknown boolean field: " + field)
		}
	case string:
		switch field {
		case entity.FieldCustomerName:
			form.CustomerName = v
		case entity.FieldCustomerPhone:
			form.CustomerPhone = v
		case entity.FieldCustomerEmail:
			form.CustomerEmail = v
		case entity.FieldCustomerAddress:
			form.CustomerAddress = v
		case entity.FieldInvoiceStatus:
			status := enum.InvoiceStatus(v)
			if !status.Valid() {
				return apperror.NewBadRequestError("Unknown invoice status: " + v)
			}
			form.InvoiceStatus = status
		case entity.FieldOwnerMessage:
			form.OwnerMessage = v
		case entity.FieldOverallDiscount:
			form.OverallDiscount = v
		case entity.FieldOverallDiscountType:
			t := enum.DiscountType(v)
			if !t.Valid() {
				return apperror.NewBadRequestError("Unknown discount type: " + v)
			}
			form.OverallDiscountType = t
		case entity.FieldFinalDiscount:
			form.FinalDiscount = v
		case entity.FieldFinalDiscountType:
			t := enum.DiscountType(v)
			if !t.Valid() {
				return apperror.NewBadRequestError("Unknown discount type: " + v)
			}
			form.FinalDiscountType = t
		case entity.FieldPaymentMethod:
			m := enum.PaymentMethod(v)
			if !m.Valid() {
				return apperror.NewBadRequestError("Unknown payment method: " + v)
			}
			form.PaymentMethod = m
		case entity.FieldPaymentDetails:
			form.PaymentDetails = v
		case entity.FieldIssuedBy:
			form.IssuedBy = v
		default:
			return apperror.NewBadRequestError("Unknown field: " + field)
		}
	default:
		return apperror.NewBadRequestError("Unsupported value type for field: " + field)
	}
	return nil
}

func setItemField(item *entity.Item, field, value string) error {
	switch field {
	case entity.ItemFieldName:
		item.Name = value
	case entity.ItemFieldPrice:
		item.Price = value
	case entity.ItemFieldQuantity:
		item.Quantity = value
	case entity.ItemFieldDiscount:
		item.Discount = value
	case entity.ItemFieldDiscountType:
		t := enum.DiscountType(value)
		if !t.Valid() {
			return apperror.NewBadRequestError("Unknown discount type: " + value)
		}
		item.DiscountType = t
	default:
		return apperror.NewBadRequestError("Unknown item field: " + field)
	}
	return nil
}

func fieldValue(form *entity.FormState, field string) string {
	switch field {
	case entity.FieldCustomerName:
		return form.CustomerName
	case entity.FieldCustomerPhone:
		return form.CustomerPhone
	case entity.FieldCustomerEmail:
		return form.CustomerEmail
	case entity.FieldCustomerAddress:
		return form.CustomerAddress
	case entity.FieldIssuedBy:
		return form.IssuedBy
	}
	return ""
}

func itemValue(item entity.Item, field string) string {
	switch field {
	case entity.ItemFieldName:
		return item.Name
	case entity.ItemFieldPrice:
		return item.Price
	case entity.ItemFieldQuantity:
		return item.Quantity
	}
	return ""
}
