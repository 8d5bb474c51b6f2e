package stream

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// OutcomeData carries a chunk of application data.
	OutcomeData OutcomeKind = iota + 1

	// OutcomeDone ends the session successfully.
	OutcomeDone

	// OutcomeFailed ends the session with an error.
	OutcomeFailed
)

// String returns the kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeData:
		return "data"
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is one value produced by a session.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Data returns a data outcome.
func Data(text string) Outcome {
	return Outcome{Kind: OutcomeData, Text: text}
}

// Done returns the successful terminal outcome.
func Done() Outcome {
	return Outcome{Kind: OutcomeDone}
}

// Failed returns the failing terminal outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Terminal reports whether o ends the session.
func (o Outcome) Terminal() bool {
	return o.Kind == OutcomeDone || o.Kind == OutcomeFailed
}

// Handlers are the callbacks used by Session.Start.
type Handlers struct {
	// OnData receives each data payload in stream order.
	OnData func(text string)

	// OnError receives the failure that ended the session. Optional.
	OnError func(err error)

	// OnComplete is called when the session ends successfully. Optional.
	OnComplete func()
}

func (h Handlers) dispatch(o Outcome) {
	switch o.Kind {
	case OutcomeData:
		if h.OnData != nil {
			h.OnData(o.Text)
		}
	case OutcomeDone:
		if h.OnComplete != nil {
			h.OnComplete()
		}
	case OutcomeFailed:
		if h.OnError != nil {
			h.OnError(o.Err)
		}
	}
}
