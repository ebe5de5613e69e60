// Package backup stores encrypted database snapshots in a vault.
package backup

import (
	"context"
	"io"
)

// Vault stores named database snapshots. Implementations must be safe to
// reuse across snapshot runs.
type Vault interface {
	// PutSnapshot stores a snapshot under name, replacing any previous
	// snapshot with the same name.
	PutSnapshot(ctx context.Context, name string, r io.Reader, size int64) error

	// GetSnapshot retrieves the snapshot stored under name and writes it
	// to w.
	GetSnapshot(ctx context.Context, name string, w io.Writer) error

	// ListSnapshots returns the stored snapshot names, oldest first.
	ListSnapshots(ctx context.Context) ([]string, error)

	// ValidateSetup verifies the vault backend is reachable and writable.
	ValidateSetup(ctx context.Context) error
}

// Encryptor encrypts snapshots before upload. Decryption requires
// unlocking the private key with a passphrase first.
type Encryptor interface {
	// Setup generates and stores a new key pair protected by passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a context for
	// decrypting snapshots.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material is in place.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked identity for decrypting snapshots.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
