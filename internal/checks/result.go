package checks

type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

type Result struct {
	CheckID string `json:"check_id"`
	Repo    string `json:"repo"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	// Metadata contains structured data supporting the result (file, counts, detected types).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Passed reports whether the check passed.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}
