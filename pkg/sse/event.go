package sse

// Kind classifies a decoded event block.
type Kind string

const (
	// KindData carries application data.
	KindData Kind = "data"

	// KindDone marks normal end of stream.
	KindDone Kind = "done"

	// KindError marks a failure reported by the remote side.
	KindError Kind = "error"
)

// Event is one decoded event block.
type Event struct {
	Kind Kind

	// Payload is the data text for KindData and the failure message for KindError.
	// It is empty for KindDone.
	Payload string
}

// Terminal reports whether no further events may follow e.
func (e Event) Terminal() bool {
	return e.Kind == KindDone || e.Kind == KindError
}
