package backup

import (
	"context"
	"testing"

	"trackd/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		v, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*MemoryVault); !ok {
			t.Errorf("vault type = %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "filesystem", FSVaultRoot: t.TempDir()})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("vault type = %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem without root", func(t *testing.T) {
		if _, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "filesystem"}); err == nil {
			t.Error("NewVaultFromConfig() expected error for missing fs_vault_root")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "tape"}); err == nil {
			t.Error("NewVaultFromConfig() expected error for unknown type")
		}
	})
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("empty type defaults to age", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*AgeEncryptor); !ok {
			t.Errorf("encryptor type = %T, want *AgeEncryptor", e)
		}
	})

	t.Run("none", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(NoneEncryptor); !ok {
			t.Errorf("encryptor type = %T, want NoneEncryptor", e)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Error("NewEncryptorFromConfig() expected error for unknown type")
		}
	})
}
