package repository

import (
	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/repository"
)

// ConfigSecretRepository serves signatory secrets resolved at startup from
// configuration. The roster and the secret map come from the same config
// section, so a displayed signatory can never silently miss its secret key.
type ConfigSecretRepository struct {
	roster  []string
	secrets map[string]string
}

// NewConfigSecretRepository creates a secret repository over the configured
// roster and per-signatory secrets.
func NewConfigSecretRepository(roster []string, secrets map[string]string) *ConfigSecretRepository {
	copied := make(map[string]string, len(secrets))
	for k, v := range secrets {
		if v == "" {
			// An empty secret means the signatory cannot authenticate at all.
			continue
		}
		copied[k] = v
	}
	return &ConfigSecretRepository{
		roster:  append([]string(nil), roster...),
		secrets: copied,
	}
}

// Lookup returns the expected password for a signatory. The Customer sentinel
// and any signatory without a configured secret report ok=false.
func (r *ConfigSecretRepository) Lookup(signatory string) (string, bool) {
	if signatory == entity.SignatoryCustomer {
		return "", false
	}
	secret, ok := r.secrets[signatory]
	return secret, ok
}

// Signatories returns the displayed signatory roster in configured order.
func (r *ConfigSecretRepository) Signatories() []string {
	return append([]string(nil), r.roster...)
}

var _ repository.SecretRepository = (*ConfigSecretRepository)(nil)
