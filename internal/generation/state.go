package generation

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the client. Token identifies the submission the
// state belongs to; Text is set on success, Message and Kind on failure.
type State struct {
	Phase   Phase     `json:"phase"`
	Token   uint64    `json:"token,omitempty"`
	Text    string    `json:"text,omitempty"`
	Message string    `json:"message,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

func (s State) Pending() bool {
	return s.Phase == PhasePending
}
