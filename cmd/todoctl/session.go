package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "todoctl", "token")
}

// readToken returns the stored token, or "" when there is none.
func readToken(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func writeToken(path, token string) error {
	if path == "" {
		return fmt.Errorf("no token file configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}
