package api

import (
	"encoding/json"
	"net/http"

	"github.com/seenimoa/propfolio/internal/config"
)

// configPayload is what the config endpoints return: the running
// configuration plus the file updates are persisted to.
type configPayload struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"`
}

// handleGetConfig returns the running configuration. Secrets (Postgres
// DSN, Redis password) carry json:"-" tags and never appear here.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	payload := configPayload{Config: s.cfg, ConfigFile: config.ConfigFilePath()}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: payload})
}

// handleUpdateConfig merges a partial configuration into the running
// one and persists the result. Wired components (store, cache, feed
// sources) pick the new values up on the next restart.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch config.Config
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	mergeConfig(s.cfg, &patch)

	path := config.ConfigFilePath()
	if err := config.SaveToFile(s.cfg, path); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	payload := configPayload{Config: s.cfg, ConfigFile: path}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: payload})
}

// handleGetConfigSecrets returns the masked status of every secret.
func (s *Server) handleGetConfigSecrets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: config.CheckSecrets(s.cfg)})
}

// mergeConfig applies the non-zero fields of src onto dst, so a partial
// update leaves everything it doesn't mention alone. Secrets never
// arrive here: their fields are json:"-", so decoding the request body
// leaves them empty.
func mergeConfig(dst, src *config.Config) {
	override(&dst.Portfolio.Path, src.Portfolio.Path)
	override(&dst.Portfolio.HorizonYears, src.Portfolio.HorizonYears)

	override(&dst.Storage.Backend, src.Storage.Backend)

	override(&dst.Cache.Backend, src.Cache.Backend)
	override(&dst.Cache.RedisAddr, src.Cache.RedisAddr)
	override(&dst.Cache.RedisDB, src.Cache.RedisDB)

	override(&dst.Rates.CacheTTL, src.Rates.CacheTTL)
	overrideSlice(&dst.Rates.Sources, src.Rates.Sources)
	override(&dst.News.CacheTTL, src.News.CacheTTL)
	overrideSlice(&dst.News.Sources, src.News.Sources)

	override(&dst.Sharing.TTLHours, src.Sharing.TTLHours)
	override(&dst.Sharing.BaseURL, src.Sharing.BaseURL)

	override(&dst.API.Host, src.API.Host)
	override(&dst.API.Port, src.API.Port)
	overrideSlice(&dst.API.CORSOrigins, src.API.CORSOrigins)

	override(&dst.Logging.Level, src.Logging.Level)
	override(&dst.Logging.Format, src.Logging.Format)
}

func override[T comparable](dst *T, src T) {
	var zero T
	if src != zero {
		*dst = src
	}
}

func overrideSlice[T any](dst *[]T, src []T) {
	if len(src) > 0 {
		*dst = src
	}
}
