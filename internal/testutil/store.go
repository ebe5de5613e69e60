package testutil

import (
	"testing"

	"trackd/internal/store"
)

// NewTestStore creates an in-memory SQLite store with the schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		st.Close()
	})
	return st
}
