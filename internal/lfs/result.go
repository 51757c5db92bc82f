package lfs

// Classification buckets a ProcessResult so callers can decide whether
// partial output is trustworthy.
type Classification int

const (
	// Clean means the run produced no error lines.
	Clean Classification = iota
	// ErroredWithData means error lines are present but stdout carried
	// data; partial results may still be useful.
	ErroredWithData
	// ErroredNoData means error lines are present and stdout was empty;
	// nothing from the run can be trusted.
	ErroredNoData
)

// String returns a short label for logging.
func (c Classification) String() string {
	switch c {
	case Clean:
		return "clean"
	case ErroredWithData:
		return "errored-with-data"
	case ErroredNoData:
		return "errored-no-data"
	default:
		return "unknown"
	}
}

// ProcessResult is the outcome of one tool invocation: the ordered stdout
// lines and the ordered stderr lines. Both slices are always non-nil so
// downstream logic can test for presence without a nil check.
type ProcessResult struct {
	OutLines []string
	ErrLines []string
}

// NewProcessResult returns an empty, non-nil-initialized result.
func NewProcessResult() *ProcessResult {
	return &ProcessResult{
		OutLines: []string{},
		ErrLines: []string{},
	}
}

// HasErrors reports whether any error lines were captured.
func (r *ProcessResult) HasErrors() bool { return len(r.ErrLines) > 0 }

// HasData reports whether any stdout lines were captured.
func (r *ProcessResult) HasData() bool { return len(r.OutLines) > 0 }

// Classify maps the result onto the three-way error classification.
func (r *ProcessResult) Classify() Classification {
	switch {
	case !r.HasErrors():
		return Clean
	case r.HasData():
		return ErroredWithData
	default:
		return ErroredNoData
	}
}
