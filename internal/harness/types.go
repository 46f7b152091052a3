package harness

// StepEvent records the outcome of one scenario step.
type StepEvent struct {
	Step    int    `json:"step"`
	As      string `json:"as"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"` // "ok" or an error code
}

// LogEvent is a committed transaction log entry with identities replaced
// by scenario names.
type LogEvent struct {
	Seq         int64    `json:"seq"`
	TxID        string   `json:"tx"`
	Program     string   `json:"program"`
	Instruction string   `json:"instruction"`
	Signers     []string `json:"signers"`
	Timestamp   int64    `json:"timestamp"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step met its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	Steps []StepEvent `json:"steps"`

	// Log is the full transaction log after the last step, including the
	// funding airdrops.
	Log []LogEvent `json:"log"`

	// Errors contains step and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepEvent{},
		Log:    []LogEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step outcome.
func (r *Result) AddStep(e StepEvent) {
	r.Steps = append(r.Steps, e)
}
