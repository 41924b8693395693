package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Credential fetches a secret by key name (conventionally uppercase).
// Sources, in order: a env/.env file, the process environment, and a
// credentials.json file in the working directory. Returns fallback when
// the key is found nowhere; callers decide whether that is fatal.
func Credential(keyname, fallback string) string {
	// godotenv only populates variables that are not already set, so
	// the real environment always wins over the file.
	_ = godotenv.Load(filepath.Join("env", ".env"))

	if value := os.Getenv(keyname); value != "" {
		return value
	}

	if data, err := os.ReadFile("credentials.json"); err == nil {
		var creds map[string]string
		if err := json.Unmarshal(data, &creds); err == nil {
			if value, ok := creds[keyname]; ok {
				return value
			}
		}
	}

	log.Warn().Str("key", keyname).Msg("no credentials found, using fallback")
	return fallback
}
