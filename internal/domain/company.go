package domain

// Company groups the postings of one employer. The backend spells the name
// field "Company" on the wire.
type Company struct {
	Name string `json:"Company"`
	Jobs []Job  `json:"jobs"`
}

// JobData is the full payload for one role query.
type JobData struct {
	Jobs []Company `json:"jobs"`
}

// JobCount returns the number of postings across all companies.
func (d JobData) JobCount() int {
	n := 0
	for _, c := range d.Jobs {
		n += len(c.Jobs)
	}
	return n
}
