package httpapi

import (
	"net/http"

	"jobscraper-web/internal/config"
)

// ConfigHandler exposes the startup config read-only.
type ConfigHandler struct {
	Cfg        config.Config
	Validation config.Validation
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Cfg)
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Validation)
}
