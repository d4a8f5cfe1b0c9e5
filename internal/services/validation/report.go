package validation

import "strings"

// Finding is one validation verdict for the report output
type Finding struct {
	Level   string `json:"level"` // "ok", "error"
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Report collects human-readable validation findings for the
// `jobs validate` command output.
type Report struct {
	Findings []Finding `json:"findings"`
}

// NewReport creates an empty validation report
func NewReport() *Report {
	return &Report{}
}

// AddOK records a passing check
func (r *Report) AddOK(subject, message string) {
	if r == nil {
		return
	}
	r.Findings = append(r.Findings, Finding{Level: "ok", Subject: subject, Message: message})
}

// AddError records a failing check
func (r *Report) AddError(subject, message string) {
	if r == nil {
		return
	}
	r.Findings = append(r.Findings, Finding{Level: "error", Subject: subject, Message: message})
}

// HasErrors reports whether any finding failed
func (r *Report) HasErrors() bool {
	if r == nil {
		return false
	}
	for _, f := range r.Findings {
		if f.Level == "error" {
			return true
		}
	}
	return false
}

// String renders the report as plain text, one finding per line
func (r *Report) String() string {
	if r == nil || len(r.Findings) == 0 {
		return ""
	}

	var b strings.Builder
	for _, f := range r.Findings {
		switch f.Level {
		case "error":
			b.WriteString("  ✗ ")
		default:
			b.WriteString("  ✓ ")
		}
		b.WriteString(f.Subject)
		b.WriteString(": ")
		b.WriteString(f.Message)
		b.WriteString("\n")
	}
	return b.String()
}
