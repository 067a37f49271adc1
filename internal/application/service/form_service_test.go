package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/enum"
	"github.com/rayypan/invoicegeneration/internal/generator"
	infra "github.com/rayypan/invoicegeneration/internal/infrastructure/repository"
	"github.com/rayypan/invoicegeneration/pkg/apperror"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []*generator.InvoicePayload
	message  string
	err      error

	// block, when non-nil, holds Generate until closed.
	block chan struct{}
}

func (f *fakeSubmitter) Generate(ctx context.Context, payload *generator.InvoicePayload) (string, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.message, f.err
}

func (f *fakeSubmitter) lastPayload() *generator.InvoicePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}

// flakySessionRepo lets a test make the store start failing writes mid-flow.
type flakySessionRepo struct {
	*infra.MemorySessionRepository
	failSaves bool
}

func (r *flakySessionRepo) Save(ctx context.Context, session *entity.FormSession) error {
	if r.failSaves {
		return errors.New("session store unavailable")
	}
	return r.MemorySessionRepository.Save(ctx, session)
}

func newTestService(sub *fakeSubmitter) *FormService {
	log := logrus.New()
	log.SetOutput(io.Discard)

	sessions := infra.NewMemorySessionRepository(infra.DefaultMemorySessionConfig())
	secrets := infra.NewConfigSecretRepository(
		[]string{"D.H.", "N.D.", "S.R.", "Customer"},
		map[string]string{"D.H.": "hunter2", "N.D.": "swordfish", "S.R.": "open-sesame"},
	)
	svc := NewFormService(sessions, secrets, sub, log)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC) }
	return svc
}

func mustCreate(t *testing.T, svc *FormService) uuid.UUID {
	t.Helper()
	snap, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return snap.ID
}

func mustUpdate(t *testing.T, svc *FormService, id uuid.UUID, field string, value any) *Snapshot {
	t.Helper()
	snap, err := svc.UpdateField(context.Background(), id, field, value)
	if err != nil {
		t.Fatalf("UpdateField(%s): %v", field, err)
	}
	return snap
}

func mustUpdateItem(t *testing.T, svc *FormService, id uuid.UUID, index int, field, value string) *Snapshot {
	t.Helper()
	snap, err := svc.UpdateItem(context.Background(), id, index, field, value)
	if err != nil {
		t.Fatalf("UpdateItem(%d, %s): %v", index, field, err)
	}
	return snap
}

// fillValidStaffForm populates everything a D.H. submission needs, password
// included.
func fillValidStaffForm(t *testing.T, svc *FormService, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	mustUpdate(t, svc, id, entity.FieldCustomerName, "John Doe")
	mustUpdate(t, svc, id, entity.FieldCustomerPhone, "9876543210")
	mustUpdate(t, svc, id, entity.FieldCustomerEmail, "john@example.com")
	mustUpdate(t, svc, id, entity.FieldCustomerAddress, "123 Main St")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldName, "Mug")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldPrice, "100")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldQuantity, "2")
	mustUpdate(t, svc, id, entity.FieldIssuedBy, "D.H.")
	if _, err := svc.SetPassword(ctx, id, "hunter2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	snap, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if snap.Form.InvoiceStatus != enum.InvoiceStatusPaid {
		t.Errorf("status = %s, want PAID", snap.Form.InvoiceStatus)
	}
	if snap.Form.PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("payment method = %s, want CASH", snap.Form.PaymentMethod)
	}
	if !snap.Form.EnableLogging {
		t.Errorf("logging should default on")
	}
	if len(snap.Form.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(snap.Form.Items))
	}
	if snap.Calculations.FinalAmount != "0.00" {
		t.Errorf("final amount = %s, want 0.00", snap.Calculations.FinalAmount)
	}
}

func TestUpdateFieldRecomputesTotals(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)

	mustUpdateItem(t, svc, id, 0, entity.ItemFieldPrice, "100")
	snap := mustUpdateItem(t, svc, id, 0, entity.ItemFieldQuantity, "2")

	if snap.Calculations.ItemTotals[0].Total != "200.00" {
		t.Errorf("item total = %s, want 200.00", snap.Calculations.ItemTotals[0].Total)
	}
	if snap.Calculations.FinalAmount != "200.00" {
		t.Errorf("final amount = %s, want 200.00", snap.Calculations.FinalAmount)
	}
}

func TestCostPriceTogglesLogging(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)

	// Manual choice first, to prove the overwrite is unconditional.
	mustUpdate(t, svc, id, entity.FieldEnableLogging, false)

	snap := mustUpdate(t, svc, id, entity.FieldIsCostPrice, true)
	if snap.Form.EnableLogging {
		t.Fatalf("cost price on must force logging off")
	}

	snap = mustUpdate(t, svc, id, entity.FieldIsCostPrice, false)
	if !snap.Form.EnableLogging {
		t.Fatalf("cost price off must force logging on")
	}
}

func TestCustomerSignatoryResetIsDestructive(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)

	mustUpdateItem(t, svc, id, 0, entity.ItemFieldPrice, "250")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldDiscount, "15")
	mustUpdate(t, svc, id, entity.FieldApplyItemDiscounts, true)
	mustUpdate(t, svc, id, entity.FieldApplyOverallDiscount, true)
	mustUpdate(t, svc, id, entity.FieldOverallDiscount, "30")
	mustUpdate(t, svc, id, entity.FieldFinalDiscount, "5")
	mustUpdate(t, svc, id, entity.FieldInvoiceStatus, "QUOTATION")

	snap := mustUpdate(t, svc, id, entity.FieldIssuedBy, "Customer")

	if snap.Form.InvoiceStatus != enum.InvoiceStatusOrderPlaced {
		t.Errorf("status = %s, want ORDER_PLACED", snap.Form.InvoiceStatus)
	}
	if snap.Form.Items[0].Price != "0" || snap.Form.Items[0].Discount != "0" {
		t.Errorf("item money = %s/%s, want 0/0", snap.Form.Items[0].Price, snap.Form.Items[0].Discount)
	}
	if snap.Form.OverallDiscount != "0" || snap.Form.FinalDiscount != "0" {
		t.Errorf("discounts = %s/%s, want 0/0", snap.Form.OverallDiscount, snap.Form.FinalDiscount)
	}
	if snap.Form.ApplyItemDiscounts || snap.Form.ApplyOverallDiscount {
		t.Errorf("discount toggles must be forced off")
	}
	if !snap.IsCustomer {
		t.Errorf("isCustomer flag not set")
	}

	// Switching back to staff does not restore anything.
	snap = mustUpdate(t, svc, id, entity.FieldIssuedBy, "D.H.")
	if snap.Form.Items[0].Price != "0" || snap.Form.OverallDiscount != "0" {
		t.Errorf("prior values must not be restored after switching back")
	}
}

func TestSignatoryChangeClearsPassword(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	mustUpdate(t, svc, id, entity.FieldIssuedBy, "D.H.")
	snap, err := svc.SetPassword(ctx, id, "hunter2")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if !snap.IsPasswordValid {
		t.Fatalf("correct password should validate")
	}

	snap = mustUpdate(t, svc, id, entity.FieldIssuedBy, "N.D.")
	if snap.IsPasswordValid {
		t.Fatalf("signatory change must clear password validity")
	}
	if snap.ShowPaymentAndLogging {
		t.Fatalf("payment fields must hide until revalidated")
	}
}

func TestSetPasswordAgainstConfiguredSecrets(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	ctx := context.Background()

	cases := []struct {
		signatory string
		password  string
		want      bool
	}{
		{"D.H.", "hunter2", true},
		{"D.H.", "wrong", false},
		{"S.R.", "open-sesame", true},
		{"Customer", "anything", false},
		{"Unknown", "anything", false},
	}

	for _, tc := range cases {
		id := mustCreate(t, svc)
		mustUpdate(t, svc, id, entity.FieldIssuedBy, tc.signatory)
		snap, err := svc.SetPassword(ctx, id, tc.password)
		if err != nil {
			t.Fatalf("SetPassword(%s): %v", tc.signatory, err)
		}
		if snap.IsPasswordValid != tc.want {
			t.Errorf("%s/%s: valid = %v, want %v", tc.signatory, tc.password, snap.IsPasswordValid, tc.want)
		}
	}
}

func TestShowPaymentAndLoggingFlag(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	snap, _ := svc.GetSession(ctx, id)
	if snap.ShowPaymentAndLogging {
		t.Fatalf("no signatory: flag must be off")
	}

	mustUpdate(t, svc, id, entity.FieldIssuedBy, "D.H.")
	snap, _ = svc.GetSession(ctx, id)
	if snap.ShowPaymentAndLogging {
		t.Fatalf("unproven password: flag must be off")
	}

	if _, err := svc.SetPassword(ctx, id, "hunter2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	snap, _ = svc.GetSession(ctx, id)
	if !snap.ShowPaymentAndLogging {
		t.Fatalf("validated staff signatory: flag must be on")
	}
}

func TestAddRemoveItem(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	snap, err := svc.AddItem(ctx, id)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(snap.Form.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(snap.Form.Items))
	}

	snap, err = svc.RemoveItem(ctx, id, 1)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(snap.Form.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(snap.Form.Items))
	}

	if _, err = svc.RemoveItem(ctx, id, 0); !errors.Is(err, apperror.ErrLastItem) {
		t.Fatalf("removing the last item must fail, got %v", err)
	}
}

func TestFieldLevelValidationWrites(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)

	snap := mustUpdate(t, svc, id, entity.FieldCustomerEmail, "nope")
	if valid, ok := snap.Validations[entity.FieldCustomerEmail]; !ok || valid {
		t.Errorf("bad email should record invalid")
	}

	snap = mustUpdate(t, svc, id, entity.FieldCustomerEmail, "a@b.co")
	if valid := snap.Validations[entity.FieldCustomerEmail]; !valid {
		t.Errorf("good email should record valid")
	}

	// Boolean toggles never write validation entries.
	snap = mustUpdate(t, svc, id, entity.FieldApplyItemDiscounts, true)
	if _, ok := snap.Validations[entity.FieldApplyItemDiscounts]; ok {
		t.Errorf("boolean fields must not be validated")
	}

	snap = mustUpdateItem(t, svc, id, 0, entity.ItemFieldPrice, "-3")
	if valid, ok := snap.Validations["item_0_price"]; !ok || valid {
		t.Errorf("negative price should record invalid under item key")
	}
}

func TestValidateFormRequiresCoreFields(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	valid, snap, err := svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if valid {
		t.Fatalf("empty form must not validate")
	}
	for _, field := range []string{"customerName", "customerPhone", "customerEmail", "customerAddress", "issuedBy"} {
		if ok, present := snap.Validations[field]; !present || ok {
			t.Errorf("field %s should be marked invalid", field)
		}
	}

	fillValidStaffForm(t, svc, id)
	valid, _, err = svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if !valid {
		t.Fatalf("complete staff form must validate")
	}
}

func TestValidateFormReplacesPriorResults(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)

	// Seed a stale per-field entry for a field form-level validation does not
	// inspect; the wholesale rewrite must drop it.
	mustUpdate(t, svc, id, entity.FieldOwnerMessage, "thanks!")

	_, snap, err := svc.ValidateForm(context.Background(), id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if _, ok := snap.Validations[entity.FieldOwnerMessage]; ok {
		t.Fatalf("form-level validation must replace the map, not merge into it")
	}
}

func TestValidateFormPasswordGate(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)
	// Changing signatory clears the proven password.
	mustUpdate(t, svc, id, entity.FieldIssuedBy, "S.R.")

	valid, _, err := svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if valid {
		t.Fatalf("unproven staff password must fail form validation")
	}

	if _, err := svc.SetPassword(ctx, id, "open-sesame"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	valid, _, err = svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if !valid {
		t.Fatalf("proven password must pass")
	}
}

func TestValidateFormCustomerSkipsPriceAndPassword(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	mustUpdate(t, svc, id, entity.FieldCustomerName, "Jane")
	mustUpdate(t, svc, id, entity.FieldCustomerPhone, "9876543210")
	mustUpdate(t, svc, id, entity.FieldCustomerEmail, "jane@example.com")
	mustUpdate(t, svc, id, entity.FieldCustomerAddress, "42 Side St")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldName, "Bookmark")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldQuantity, "3")
	mustUpdate(t, svc, id, entity.FieldIssuedBy, "Customer")

	valid, snap, err := svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if !valid {
		t.Fatalf("customer order without price or password must validate, got %v", snap.Validations)
	}
	if _, ok := snap.Validations["item_0_price"]; ok {
		t.Errorf("customer orders must not validate item price")
	}
}

func TestValidateFormOnlinePaymentNeedsDetails(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)
	mustUpdate(t, svc, id, entity.FieldPaymentMethod, "ONLINE")

	valid, snap, err := svc.ValidateForm(ctx, id)
	if err != nil {
		t.Fatalf("ValidateForm: %v", err)
	}
	if valid {
		t.Fatalf("online payment without details must fail")
	}
	if ok := snap.Validations[entity.FieldPaymentDetails]; ok {
		t.Errorf("paymentDetails should be marked invalid")
	}

	mustUpdate(t, svc, id, entity.FieldPaymentDetails, "upi: someone@bank")
	valid, _, _ = svc.ValidateForm(ctx, id)
	if !valid {
		t.Fatalf("online payment with details must pass")
	}
}

func TestSubmitSuccessResetsEverything(t *testing.T) {
	sub := &fakeSubmitter{message: "Invoice generated & emailed successfully"}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)
	mustUpdate(t, svc, id, entity.FieldInvoiceStatus, "QUOTATION")

	message, snap, err := svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if message != "Invoice generated & emailed successfully" {
		t.Errorf("message = %q", message)
	}

	payload := sub.lastPayload()
	if payload == nil {
		t.Fatalf("no payload delivered")
	}
	if payload.InvoiceStatus != enum.InvoiceStatusQuotation {
		t.Errorf("payload status = %s, want QUOTATION", payload.InvoiceStatus)
	}
	if payload.Items[0].Price != 100 || payload.Items[0].Quantity != 2 {
		t.Errorf("payload item = %+v", payload.Items[0])
	}
	if payload.InvoiceDate != "09-03-2025" {
		t.Errorf("invoice date = %q, want 09-03-2025", payload.InvoiceDate)
	}

	// Full reset afterwards.
	if snap.Form.CustomerName != "" || snap.Form.IssuedBy != "" {
		t.Errorf("form not reset: %+v", snap.Form)
	}
	if snap.Form.InvoiceStatus != enum.InvoiceStatusPaid {
		t.Errorf("status not reset: %s", snap.Form.InvoiceStatus)
	}
	if len(snap.Validations) != 0 {
		t.Errorf("validations not reset: %v", snap.Validations)
	}
	if snap.IsPasswordValid {
		t.Errorf("password state not reset")
	}
	if snap.IsSubmitting {
		t.Errorf("submit gate not released")
	}
}

func TestSubmitValidationFailureNeverCallsUpstream(t *testing.T) {
	sub := &fakeSubmitter{message: "ok"}
	svc := newTestService(sub)
	id := mustCreate(t, svc)

	_, _, err := svc.Submit(context.Background(), id)
	appErr := apperror.GetAppError(err)
	if appErr.Code != 422 {
		t.Fatalf("err = %v, want 422 validation error", err)
	}
	if sub.lastPayload() != nil {
		t.Fatalf("upstream must not be called on validation failure")
	}
}

func TestSubmitWrongPasswordRejected(t *testing.T) {
	sub := &fakeSubmitter{message: "ok"}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)
	mustUpdate(t, svc, id, entity.FieldIssuedBy, "N.D.") // clears proven password
	if _, err := svc.SetPassword(ctx, id, "not-it"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	_, _, err := svc.Submit(ctx, id)
	if !errors.Is(err, apperror.ErrInvalidPassword) {
		t.Fatalf("err = %v, want invalid password", err)
	}
	if sub.lastPayload() != nil {
		t.Fatalf("upstream must not be called with a wrong password")
	}
}

func TestSubmitRejectionPreservesState(t *testing.T) {
	sub := &fakeSubmitter{err: &generator.RejectedError{StatusCode: 500, Body: "boom"}}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)

	_, _, err := svc.Submit(ctx, id)
	appErr := apperror.GetAppError(err)
	if appErr.Code != 502 {
		t.Fatalf("err = %v, want 502", err)
	}

	snap, _ := svc.GetSession(ctx, id)
	if snap.Form.CustomerName != "John Doe" {
		t.Errorf("form must be preserved for retry")
	}
	if !snap.IsPasswordValid {
		t.Errorf("password state must be preserved for retry")
	}
	if snap.IsSubmitting {
		t.Errorf("gate must be released after failure")
	}
}

func TestSubmitTransportFailurePreservesState(t *testing.T) {
	sub := &fakeSubmitter{err: &generator.TransportError{Err: errors.New("connection refused")}}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)

	_, _, err := svc.Submit(ctx, id)
	appErr := apperror.GetAppError(err)
	if appErr.Code != 503 {
		t.Fatalf("err = %v, want 503", err)
	}

	snap, _ := svc.GetSession(ctx, id)
	if snap.Form.CustomerName != "John Doe" {
		t.Errorf("form must be preserved for retry")
	}
}

func TestSubmitSingleFlightGate(t *testing.T) {
	sub := &fakeSubmitter{message: "ok", block: make(chan struct{})}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Submit(ctx, id)
		done <- err
	}()

	// Wait until the first submission is inside the collaborator.
	deadline := time.Now().Add(2 * time.Second)
	for sub.lastPayload() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("first submission never reached the collaborator")
		}
		time.Sleep(time.Millisecond)
	}

	snap, _ := svc.GetSession(ctx, id)
	if !snap.IsSubmitting {
		t.Errorf("busy indicator not surfaced while in flight")
	}

	if _, _, err := svc.Submit(ctx, id); !errors.Is(err, apperror.ErrSubmitInFlight) {
		t.Fatalf("second submit = %v, want in-flight rejection", err)
	}

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestSubmitStoreFailureReleasesGate(t *testing.T) {
	sub := &fakeSubmitter{message: "ok"}
	log := logrus.New()
	log.SetOutput(io.Discard)

	sessions := &flakySessionRepo{MemorySessionRepository: infra.NewMemorySessionRepository(infra.DefaultMemorySessionConfig())}
	secrets := infra.NewConfigSecretRepository(
		[]string{"D.H.", "Customer"},
		map[string]string{"D.H.": "hunter2"},
	)
	svc := NewFormService(sessions, secrets, sub, log)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC) }

	id := mustCreate(t, svc)
	ctx := context.Background()
	fillValidStaffForm(t, svc, id)

	sessions.failSaves = true
	if _, _, err := svc.Submit(ctx, id); err == nil {
		t.Fatalf("Submit must surface the store failure")
	}
	if sub.lastPayload() != nil {
		t.Fatalf("upstream must not be called when the gate cannot be persisted")
	}

	// The gate is released, so a retry works once the store recovers.
	sessions.failSaves = false
	if _, _, err := svc.Submit(ctx, id); err != nil {
		t.Fatalf("retry after store recovery: %v", err)
	}
}

func TestSubmitCustomerPayloadZeroesMoney(t *testing.T) {
	sub := &fakeSubmitter{message: "ok"}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	mustUpdate(t, svc, id, entity.FieldCustomerName, "Jane")
	mustUpdate(t, svc, id, entity.FieldCustomerPhone, "9876543210")
	mustUpdate(t, svc, id, entity.FieldCustomerEmail, "jane@example.com")
	mustUpdate(t, svc, id, entity.FieldCustomerAddress, "42 Side St")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldName, "Bookmark")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldPrice, "175")
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldQuantity, "3")
	mustUpdate(t, svc, id, entity.FieldInvoiceStatus, "PAID")
	mustUpdate(t, svc, id, entity.FieldIssuedBy, "Customer")

	if _, _, err := svc.Submit(ctx, id); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	payload := sub.lastPayload()
	if payload.InvoiceStatus != enum.InvoiceStatusOrderPlaced {
		t.Errorf("status = %s, want ORDER_PLACED", payload.InvoiceStatus)
	}
	if payload.Items[0].Price != 0 || payload.Items[0].Discount != 0 {
		t.Errorf("customer payload money not zeroed: %+v", payload.Items[0])
	}
	if payload.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", payload.Items[0].Quantity)
	}
	if payload.ApplyOverallDiscount || payload.OverallDiscount != 0 || payload.AdjustmentAmount != 0 {
		t.Errorf("customer payload discounts not zeroed")
	}
}

func TestSubmitPayloadGatesDiscountsAndPaymentDetails(t *testing.T) {
	sub := &fakeSubmitter{message: "ok"}
	svc := newTestService(sub)
	id := mustCreate(t, svc)
	ctx := context.Background()

	fillValidStaffForm(t, svc, id)
	mustUpdateItem(t, svc, id, 0, entity.ItemFieldDiscount, "12")
	mustUpdate(t, svc, id, entity.FieldOverallDiscount, "7")
	mustUpdate(t, svc, id, entity.FieldFinalDiscount, "4")
	mustUpdate(t, svc, id, entity.FieldPaymentDetails, "ignored for cash")
	// Both discount toggles stay off.

	if _, _, err := svc.Submit(ctx, id); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	payload := sub.lastPayload()
	if payload.Items[0].Discount != 0 {
		t.Errorf("item discount must be gated by its toggle")
	}
	if payload.Items[0].DiscountType != enum.DiscountTypeFlat {
		t.Errorf("gated discount type must fall back to FLAT")
	}
	if payload.ApplyOverallDiscount || payload.OverallDiscount != 0 {
		t.Errorf("overall discount must be gated by its toggle")
	}
	// The final adjustment is never gated.
	if payload.AdjustmentAmount != 4 {
		t.Errorf("adjustment = %v, want 4", payload.AdjustmentAmount)
	}
	// Cash payment strips the details.
	if payload.PaymentDetails != "" {
		t.Errorf("payment details = %q, want empty for CASH", payload.PaymentDetails)
	}
}

func TestUpdateFieldUnknownSession(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})

	_, err := svc.UpdateField(context.Background(), uuid.New(), entity.FieldCustomerName, "x")
	appErr := apperror.GetAppError(err)
	if appErr.Code != 404 {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestUpdateFieldRejectsUnknownFieldOrValue(t *testing.T) {
	svc := newTestService(&fakeSubmitter{})
	id := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateField(ctx, id, "noSuchField", "x"); err == nil {
		t.Errorf("unknown field must be rejected")
	}
	if _, err := svc.UpdateField(ctx, id, entity.FieldInvoiceStatus, "SHIPPED"); err == nil {
		t.Errorf("unknown status must be rejected")
	}
	if _, err := svc.UpdateField(ctx, id, entity.FieldCustomerName, 42); err == nil {
		t.Errorf("non string/bool value must be rejected")
	}
}
