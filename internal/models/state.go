package models

// Phase names a lifecycle state for templates, logs and JSON.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// RequestState is one of Idle, Submitting, Succeeded or Failed. The set is
// closed: only types in this package implement it.
type RequestState interface {
	Phase() Phase
	isRequestState()
}

type Idle struct{}

type Submitting struct{}

type Succeeded struct {
	Record   SummaryRecord
	Metadata SourceMetadata
}

type Failed struct {
	Message string
}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Submitting) Phase() Phase { return PhaseSubmitting }
func (Succeeded) Phase() Phase  { return PhaseSucceeded }
func (Failed) Phase() Phase     { return PhaseFailed }

func (Idle) isRequestState()       {}
func (Submitting) isRequestState() {}
func (Succeeded) isRequestState()  {}
func (Failed) isRequestState()     {}

// IsTerminal reports whether s is Succeeded or Failed.
func IsTerminal(s RequestState) bool {
	switch s.(type) {
	case Succeeded, Failed:
		return true
	}
	return false
}

// StateView is the wire form of a RequestState pushed to browsers.
type StateView struct {
	Phase    Phase           `json:"phase"`
	Summary  *SummaryRecord  `json:"summary,omitempty"`
	Metadata *SourceMetadata `json:"metadata,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func NewStateView(s RequestState) StateView {
	v := StateView{Phase: s.Phase()}
	switch st := s.(type) {
	case Succeeded:
		v.Summary = &st.Record
		v.Metadata = &st.Metadata
	case Failed:
		v.Error = st.Message
	}
	return v
}
