package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the errors into one, or returns nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.Bind = strings.TrimSpace(out.App.Bind)
	out.Backend.Host = strings.TrimRight(strings.TrimSpace(out.Backend.Host), "/")
	out.Render.LinkOrigin = strings.TrimRight(strings.TrimSpace(out.Render.LinkOrigin), "/")
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Backend.Host == "" {
		res.addErr("backend.host is required (set it in the config file or via BACKEND_HOST)")
	} else if !absoluteHTTP(out.Backend.Host) {
		res.addErr("backend.host must be an absolute http(s) URL, got %q", out.Backend.Host)
	}

	if out.Backend.TimeoutSeconds < 0 {
		res.addErr("backend.timeout_seconds must be >= 0")
	}
	if out.Backend.RatePerSecond < 0 {
		res.addErr("backend.rate_per_second must be >= 0")
	}
	if out.Backend.Burst < 0 {
		res.addErr("backend.burst must be >= 0")
	}
	if out.Backend.RatePerSecond > 0 && out.Backend.Burst == 0 {
		res.addWarn("backend.burst is 0 with a rate limit set; using 1.")
		out.Backend.Burst = 1
	}

	if out.Render.LinkOrigin == "" {
		res.addErr("render.link_origin is required")
	} else if !absoluteHTTP(out.Render.LinkOrigin) {
		res.addErr("render.link_origin must be an absolute http(s) URL, got %q", out.Render.LinkOrigin)
	}

	if out.Sessions.IdleMinutes <= 0 {
		res.addErr("sessions.idle_minutes must be > 0")
	}
	if out.Sessions.SweepSeconds <= 0 {
		res.addErr("sessions.sweep_seconds must be > 0")
	}

	if out.Diagnostics.RetentionDays < 0 {
		res.addErr("diagnostics.retention_days must be >= 0")
	} else if out.Diagnostics.Enabled && out.Diagnostics.RetentionDays == 0 {
		res.addWarn("diagnostics.retention_days is 0; the fetch log is never pruned.")
	}

	switch out.Log.Level {
	case "debug", "info", "warn", "error":
	case "":
		out.Log.Level = "info"
	default:
		res.addErr("log.level must be one of debug, info, warn, error")
	}

	return out, res
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
