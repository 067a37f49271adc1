package repository

import "testing"

func TestConfigSecretRepositoryLookup(t *testing.T) {
	repo := NewConfigSecretRepository(
		[]string{"D.H.", "N.D.", "S.R.", "Customer"},
		map[string]string{"D.H.": "hunter2", "N.D.": "", "S.R.": "letmein"},
	)

	if secret, ok := repo.Lookup("D.H."); !ok || secret != "hunter2" {
		t.Errorf("Lookup(D.H.) = %q, %v", secret, ok)
	}
	// Empty configured secret means authentication is impossible, not "".
	if _, ok := repo.Lookup("N.D."); ok {
		t.Errorf("Lookup(N.D.) should not resolve an empty secret")
	}
	if _, ok := repo.Lookup("Customer"); ok {
		t.Errorf("Customer must never have a secret")
	}
	if _, ok := repo.Lookup("unknown"); ok {
		t.Errorf("unknown signatory must not resolve")
	}
}

func TestConfigSecretRepositorySignatories(t *testing.T) {
	roster := []string{"D.H.", "Customer"}
	repo := NewConfigSecretRepository(roster, nil)

	got := repo.Signatories()
	if len(got) != 2 || got[0] != "D.H." || got[1] != "Customer" {
		t.Fatalf("Signatories = %v, want %v", got, roster)
	}
}
