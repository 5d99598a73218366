package dto

import "time"

// SweepResponse summarizes one batch sweep. Errors embed the subscription id of each failure.
type SweepResponse struct {
	Sweep           string         `json:"sweep"`
	TotalCandidates int            `json:"total_candidates"`
	Updated         int            `json:"updated"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	Errors          []string       `json:"errors"`
	Decisions       map[string]int `json:"decisions,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
}
