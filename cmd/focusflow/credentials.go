package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const credentialsFile = "credentials.json"

// credentials is what login leaves behind for later commands.
type credentials struct {
	APIURL string `json:"api_url"`
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

var errNotLoggedIn = errors.New("not logged in, run `focusflow login` first")

func configDir() (string, error) {
	if dir := os.Getenv("FOCUSFLOW_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "focusflow"), nil
}

func saveCredentials(dir string, creds credentials) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, credentialsFile), data, 0o600)
}

func loadCredentials(dir string) (credentials, error) {
	data, err := os.ReadFile(filepath.Join(dir, credentialsFile))
	if errors.Is(err, os.ErrNotExist) {
		return credentials{}, errNotLoggedIn
	}
	if err != nil {
		return credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.Token == "" {
		return credentials{}, errNotLoggedIn
	}
	return creds, nil
}

func removeCredentials(dir string) error {
	err := os.Remove(filepath.Join(dir, credentialsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
