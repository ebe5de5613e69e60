package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trackd/internal/tracker"
)

// Database is the slice of the store needed to produce a snapshot.
type Database interface {
	BackupTo(destPath string) error
}

// Snapshotter produces encrypted database snapshots and uploads them to a
// vault.
type Snapshotter struct {
	vault  Vault
	enc    Encryptor
	logger tracker.Logger
	clock  tracker.Clock
}

// NewSnapshotter wires a snapshot runner. logger and clock fall back to
// no-op and real implementations when nil.
func NewSnapshotter(vault Vault, enc Encryptor, logger tracker.Logger, clock tracker.Clock) *Snapshotter {
	if logger == nil {
		logger = tracker.NewNopLogger()
	}
	if clock == nil {
		clock = tracker.RealClock{}
	}
	return &Snapshotter{vault: vault, enc: enc, logger: logger, clock: clock}
}

// Snapshot copies the database, encrypts the copy, and uploads it under a
// timestamped name. Returns the stored snapshot name.
func (s *Snapshotter) Snapshot(ctx context.Context, db Database) (string, error) {
	tmpDir, err := os.MkdirTemp("", "trackd-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// VACUUM INTO refuses to overwrite, so the plain copy gets a path
	// that does not exist yet.
	plainPath := filepath.Join(tmpDir, "snapshot.db")
	if err := db.BackupTo(plainPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}

	encPath := filepath.Join(tmpDir, "snapshot.db.age")
	if err := s.encryptFile(plainPath, encPath); err != nil {
		return "", err
	}

	name := "trackd-" + s.clock.Now().UTC().Format("20060102T150405Z") + ".db.age"
	if err := s.upload(ctx, encPath, name); err != nil {
		return "", err
	}

	s.logger.Info("snapshot uploaded", "name", name)
	return name, nil
}

// Restore downloads the named snapshot, decrypts it with the passphrase,
// and writes the database to destPath.
func (s *Snapshotter) Restore(ctx context.Context, name, passphrase, destPath string) error {
	dc, err := s.enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "trackd-restore-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	encPath := filepath.Join(tmpDir, "snapshot.db.age")
	encFile, err := os.Create(encPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if err := s.vault.GetSnapshot(ctx, name, encFile); err != nil {
		encFile.Close()
		return err
	}
	if err := encFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	in, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating database file: %w", err)
	}
	defer out.Close()

	if err := dc.Decrypt(in, out); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}

func (s *Snapshotter) encryptFile(srcPath, destPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening database copy: %w", err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating encrypted file: %w", err)
	}
	defer out.Close()

	if err := s.enc.Encrypt(in, out); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return nil
}

func (s *Snapshotter) upload(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat encrypted snapshot: %w", err)
	}
	if err := s.vault.PutSnapshot(ctx, name, f, info.Size()); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	return nil
}
