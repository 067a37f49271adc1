package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rayypan/invoicegeneration/internal/domain/entity"
)

// SessionRepository defines the interface for form session storage. A missing
// session is reported as (nil, nil), not an error.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.FormSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FormSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
