package config

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain.
	KeyringService = "diffscope"

	// KeyOpenAI and KeyGemini identify the stored credentials.
	KeyOpenAI = "openai-api-key"
	KeyGemini = "gemini-api-key"
)

// KeyringManager stores API keys in the OS keychain (macOS Keychain,
// Windows Credential Manager, Linux Secret Service).
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a keyring manager.
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{logger: slog.Default().With("component", "keyring")}
}

// Available probes whether a keychain backend works on this system.
// Headless Linux without libsecret typically has none.
func (km *KeyringManager) Available() bool {
	const probe = "diffscope-probe"
	if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
		return false
	}
	keyring.Delete(KeyringService, probe)
	return true
}

// Set stores a credential under the given item name.
func (km *KeyringManager) Set(item, value string) error {
	if value == "" {
		return fmt.Errorf("credential cannot be empty")
	}
	if err := keyring.Set(KeyringService, item, value); err != nil {
		km.logger.Error("keychain write failed", "item", item, "error", err)
		return fmt.Errorf("save to OS keychain: %w", err)
	}
	km.logger.Info("credential saved to keychain", "item", item)
	return nil
}

// Get retrieves a credential. A missing entry returns "" with no error.
func (km *KeyringManager) Get(item string) (string, error) {
	value, err := keyring.Get(KeyringService, item)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read from OS keychain: %w", err)
	}
	return value, nil
}

// Delete removes a credential. Deleting a missing entry is not an error.
func (km *KeyringManager) Delete(item string) error {
	err := keyring.Delete(KeyringService, item)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete from OS keychain: %w", err)
	}
	return nil
}
