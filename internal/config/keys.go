package config

import "os"

// SecretSource represents where a credential comes from.
type SecretSource string

const (
	SourceEnv    SecretSource = "env"
	SourceConfig SecretSource = "config"
	SourceNone   SecretSource = "none"
)

// SecretStatus reports one credential for the status command, with the
// value masked for display.
type SecretStatus struct {
	Name   string       `json:"name"`
	Source SecretSource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "pos...lio"
}

// CheckSecrets returns the status of every configured credential.
func CheckSecrets(cfg *Config) []SecretStatus {
	return []SecretStatus{
		checkSecret("Postgres DSN", cfg.Storage.PostgresDSN, "PROPFOLIO_STORAGE_POSTGRES_DSN"),
		checkSecret("Redis Password", cfg.Cache.RedisPassword, "PROPFOLIO_CACHE_REDIS_PASSWORD"),
	}
}

// checkSecret checks if a credential is set and where it came from.
func checkSecret(name, value, envVar string) SecretStatus {
	s := SecretStatus{Name: name, Source: SourceNone}
	if value == "" {
		return s
	}
	s.IsSet = true
	s.Masked = maskSecret(value)
	s.Source = SourceConfig
	if os.Getenv(envVar) != "" {
		s.Source = SourceEnv
	}
	return s
}

// maskSecret masks a credential for display, showing only the first
// and last 3 characters.
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}
