package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CredentialExport is the keystore entry written for an activated subscriber. The
// credential fields hold ciphertext exactly as stored in the database.
type CredentialExport struct {
	Version    int       `json:"version"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	Exchange   string    `json:"exchange"`
	APIKey     string    `json:"encrypted_api_key"`
	APISecret  string    `json:"encrypted_api_secret"`
	ExportedAt time.Time `json:"exported_at"`
}

// WriteCredentialExport stores the entry as <dir>/<userID>_<exchange>.json readable by
// the owner only, replacing any previous export for the same pair.
func WriteCredentialExport(dir string, entry CredentialExport) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	entry.Version = 1
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal credential export: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d_%s.json", entry.UserID, entry.Exchange))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write credential export: %w", err)
	}
	return path, nil
}
