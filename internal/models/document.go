package models

// JobDocument is the typed form of one parsed job document: the jobs
// array and the hook-type to job-id mapping.
type JobDocument struct {
	Jobs  []*Job              `yaml:"jobs" json:"jobs"`
	Hooks map[string][]string `yaml:"hooks,omitempty" json:"hooks,omitempty"`

	// Raw holds the untyped parse of the same document for schema
	// validation (unknown-field rejection). Never serialized.
	Raw map[string]interface{} `yaml:"-" json:"-"`
}

// IsEmpty reports whether the document declares neither jobs nor hooks
func (d *JobDocument) IsEmpty() bool {
	return d == nil || (len(d.Jobs) == 0 && len(d.Hooks) == 0)
}

// GetJob returns the job with the given id from the document
func (d *JobDocument) GetJob(id string) (*Job, bool) {
	for _, j := range d.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return nil, false
}
