package printing

// JobType represents the kind of document a print job renders
type JobType string

const (
	JobTypeReceipt       JobType = "receipt"
	JobTypeKitchenTicket JobType = "kitchen_ticket"
	JobTypeReprint       JobType = "reprint"
)

// IsValid checks if the JobType is a valid value
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeReceipt, JobTypeKitchenTicket, JobTypeReprint:
		return true
	}
	return false
}

// String returns the string representation of JobType
func (t JobType) String() string {
	return string(t)
}

// JobStatus represents the lifecycle of a print job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"   // queued, not yet delivered to an agent
	JobStatusFetched   JobStatus = "fetched"   // handed to an agent poll
	JobStatusPrinting  JobStatus = "printing"  // agent reported print start
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusFetched, JobStatusPrinting, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status admits no further transitions.
// failed is not terminal: a bounded requeue moves it back to pending.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusFetched
	case JobStatusFetched:
		return target == JobStatusPrinting || target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusPrinting:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusFailed:
		return target == JobStatusPending
	case JobStatusCompleted:
		return false
	}
	return false
}

// PaperSize represents the thermal paper width a job renders for
type PaperSize string

const (
	PaperSizeReceipt58MM PaperSize = "RECEIPT_58MM"
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM"
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	return p == PaperSizeReceipt58MM || p == PaperSizeReceipt80MM
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Width returns the paper width in millimeters
func (p PaperSize) Width() int {
	if p == PaperSizeReceipt58MM {
		return 58
	}
	return 80
}
