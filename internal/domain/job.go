package domain

// Job is a single posting as served by the scraper backend.
type Job struct {
	Role   string `json:"role"`
	Type   string `json:"type"`
	Salary string `json:"salary"`
	Link   string `json:"link"` // relative path on the job board
}
