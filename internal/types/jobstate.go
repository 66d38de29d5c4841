package types

// JobState is one node of the ingestion job state machine.
type JobState string

const (
	JobCreated      JobState = "created"
	JobResolving    JobState = "resolving"
	JobProvisioning JobState = "provisioning"
	JobWalking      JobState = "walking"
	JobReading      JobState = "reading"
	JobAssembling   JobState = "assembling"
	JobDone         JobState = "done"

	JobUnauthorized   JobState = "unauthorized"
	JobNotFound       JobState = "not_found"
	JobRefNotFound    JobState = "ref_not_found"
	JobQuotaExceeded  JobState = "quota_exceeded"
	JobIOError        JobState = "io_error"
)

// Terminal reports whether state has no legal successor other than
// starting a new job.
func (s JobState) Terminal() bool {
	switch s {
	case JobDone, JobUnauthorized, JobNotFound, JobRefNotFound, JobQuotaExceeded, JobIOError:
		return true
	default:
		return false
	}
}

// Transition is one observed state-machine edge, surfaced to callers via
// an optional observer callback.
type Transition struct {
	From JobState
	To   JobState
}

// Observer receives each state transition as the job advances. Core
// packages accept it as an optional collaborator; nil is valid (no-op).
type Observer interface {
	OnTransition(Transition)
}
