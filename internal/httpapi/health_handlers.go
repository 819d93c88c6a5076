package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Live func() int
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if h.Live != nil {
		body["views"] = h.Live()
	}
	writeJSON(w, body)
}
