package view

import "jobscraper-web/internal/domain"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	// PhaseStale follows a failed fetch; any earlier data is still shown.
	PhaseStale Phase = "idle_with_stale_data"
)

// State is the per-view UI state. Only the owning View mutates it; callers
// receive copies.
type State struct {
	IsLoading    bool            `json:"isLoading"`
	CurrentData  *domain.JobData `json:"currentData"`
	SelectedRole domain.Role     `json:"selectedRole"`
	IsDarkMode   bool            `json:"isDarkMode"`
	Phase        Phase           `json:"phase"`
	// Rev increases on every change, so renderings of the same view can be
	// ordered by the state they were built from.
	Rev uint64 `json:"rev"`
}

func initialState() State {
	return State{
		SelectedRole: domain.DefaultRole,
		Phase:        PhaseIdle,
	}
}
