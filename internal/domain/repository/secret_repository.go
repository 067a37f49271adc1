package repository

// SecretRepository resolves a signatory identifier to its expected password.
// A signatory without a configured secret reports ok=false, which the caller
// must treat as "no valid password possible", never as a crash.
type SecretRepository interface {
	Lookup(signatory string) (secret string, ok bool)
	Signatories() []string
}
