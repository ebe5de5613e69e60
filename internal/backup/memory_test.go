package backup

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetSnapshot(t *testing.T) {
	ctx := context.Background()
	vault := NewMemoryVault()

	tests := []struct {
		name     string
		snapshot string
		content  string
	}{
		{
			name:     "store and retrieve content",
			snapshot: "trackd-20250310T090000Z.db.age",
			content:  "hello world",
		},
		{
			name:     "store empty content",
			snapshot: "empty.db.age",
			content:  "",
		},
		{
			name:     "store large content",
			snapshot: "large.db.age",
			content:  strings.Repeat("x", 10000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			if err := vault.PutSnapshot(ctx, tt.snapshot, r, int64(len(tt.content))); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetSnapshot(ctx, tt.snapshot, &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetSnapshot() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestMemoryVault_GetSnapshotNotFound(t *testing.T) {
	vault := NewMemoryVault()

	var buf bytes.Buffer
	err := vault.GetSnapshot(context.Background(), "nonexistent", &buf)
	if err == nil {
		t.Error("GetSnapshot() expected error for nonexistent snapshot, got nil")
	}
}

func TestMemoryVault_PutSnapshotSizeMismatch(t *testing.T) {
	vault := NewMemoryVault()

	content := "test"
	r := strings.NewReader(content)
	err := vault.PutSnapshot(context.Background(), "snap", r, int64(len(content)+10))
	if err == nil {
		t.Error("PutSnapshot() expected error for size mismatch, got nil")
	}
}

func TestMemoryVault_ListSnapshots(t *testing.T) {
	ctx := context.Background()
	vault := NewMemoryVault()

	for _, name := range []string{"b.db.age", "a.db.age"} {
		if err := vault.PutSnapshot(ctx, name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutSnapshot(%s) error = %v", name, err)
		}
	}

	names, err := vault.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.db.age" || names[1] != "b.db.age" {
		t.Errorf("ListSnapshots() = %v, want sorted [a.db.age b.db.age]", names)
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	vault := NewMemoryVault()

	if err := vault.ValidateSetup(context.Background()); err != nil {
		t.Errorf("ValidateSetup() unexpected error: %v", err)
	}
}
