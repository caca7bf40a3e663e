package scrapping

import (
	"time"

	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/integration"
)

// maxFailures bounds the failures kept on a report.
const maxFailures = 20

// Failure is one record that could not be integrated.
type Failure struct {
	DofusdbID int    `json:"dofusdb_id,omitempty"`
	Message   string `json:"message"`
}

// Report summarizes one collection run.
type Report struct {
	Alias      string             `json:"alias"`
	Source     string             `json:"source"`
	Entity     string             `json:"entity"`
	DryRun     bool               `json:"dry_run"`
	StopReason collect.StopReason `json:"stop_reason"`
	Stats      collect.Stats      `json:"stats"`
	Processed  int                `json:"processed"`
	Created    int                `json:"created"`
	Updated    int                `json:"updated"`
	Skipped    int                `json:"skipped"`
	Failed     int                `json:"failed"`
	Pending    int                `json:"pending"`
	Failures   []Failure          `json:"failures,omitempty"`
	Archived   []string           `json:"archived,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

func (r *Report) tally(id int, res integration.Result) {
	r.Processed++
	if !res.IsSuccess() {
		r.Failed++
		if len(r.Failures) < maxFailures {
			r.Failures = append(r.Failures, Failure{DofusdbID: id, Message: res.Message()})
		}
		return
	}
	if n, ok := res.Data()["pending"].(int); ok {
		r.Pending += n
	}
	switch res.PrimaryAction() {
	case integration.ActionCreated:
		r.Created++
	case integration.ActionUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

// CapReached reports whether the run stopped on the entity cap rather than on remote exhaustion.
func (r *Report) CapReached() bool {
	return r.StopReason == collect.StopCapReached
}
