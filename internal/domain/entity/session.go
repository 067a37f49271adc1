package entity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FormSession is one live invoice form: its state, derived views, and the
// transient password that never enters FormState. All mutations go through the
// form service, which serializes events with the session lock so the
// one-event-at-a-time model survives concurrent HTTP requests.
type FormSession struct {
	ID           uuid.UUID         `json:"id"`
	Form         *FormState        `json:"form"`
	Calculations CalculationResult `json:"calculations"`
	Validations  map[string]bool   `json:"validations"`

	Password      string `json:"-"`
	PasswordValid bool   `json:"isPasswordValid"`

	// Submitting is the single-flight gate: true only while a submission is
	// outstanding against the generation endpoint.
	Submitting bool `json:"isSubmitting"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	mu sync.Mutex
}

// NewFormSession returns a fresh session with default form state.
func NewFormSession() *FormSession {
	now := time.Now()
	return &FormSession{
		ID:          uuid.New(),
		Form:        NewFormState(),
		Validations: make(map[string]bool),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Lock serializes events against this session.
func (s *FormSession) Lock() { s.mu.Lock() }

// Unlock releases the session event lock.
func (s *FormSession) Unlock() { s.mu.Unlock() }

// Touch records activity for the session store's TTL sweep.
func (s *FormSession) Touch() { s.UpdatedAt = time.Now() }
