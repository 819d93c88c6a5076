package httpapi

import (
	"database/sql"
	"time"

	"jobscraper-web/internal/config"
	"jobscraper-web/internal/session"
)

type Deps struct {
	Sessions *session.Manager

	// DB holds the fetch log; nil when diagnostics are disabled.
	DB *sql.DB

	// Config as loaded at startup. It is never reloaded.
	Cfg        config.Config
	Validation config.Validation

	// SSE keep-alive; zero means 15s.
	PingInterval time.Duration
}
