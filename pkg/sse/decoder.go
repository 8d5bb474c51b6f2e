package sse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Wire protocol tokens.
const (
	// Delimiter separates event blocks.
	Delimiter = "\n\n"

	// DataPrefix marks the payload line of an event block.
	DataPrefix = "data: "

	// DoneSentinel is the payload that ends a stream normally.
	DoneSentinel = "[DONE]"

	// ErrorSentinel prefixes the payload that ends a stream with a failure.
	ErrorSentinel = "[ERROR]"
)

// Decoder turns raw stream chunks into events.
// A Decoder is stateful and must not be shared between streams or goroutines.
type Decoder struct {
	text     *encoding.Decoder
	pending  []byte // undecoded tail, at most one incomplete rune
	buffer   string // decoded text after the last complete block
	scratch  [512]byte
	finished bool
}

// NewDecoder creates a decoder for a single stream.
func NewDecoder() *Decoder {
	return &Decoder{
		text: unicode.UTF8.NewDecoder(),
	}
}

// Feed decodes chunk and returns the events completed by it, in stream order.
//
// Once a Done or Error event has been returned the decoder is finished and
// every later call returns nil.
func (d *Decoder) Feed(chunk []byte) []Event {
	if d.finished {
		return nil
	}

	d.buffer += d.decode(chunk)

	segments := strings.Split(d.buffer, Delimiter)
	d.buffer = segments[len(segments)-1]

	var events []Event
	for _, segment := range segments[:len(segments)-1] {
		ev, ok := parseSegment(segment)
		if !ok {
			continue
		}

		events = append(events, ev)
		if ev.Terminal() {
			d.finish()
			break
		}
	}

	return events
}

// Finished reports whether a terminal event has been produced.
func (d *Decoder) Finished() bool {
	return d.finished
}

// Buffered returns the number of decoded bytes held back waiting for a delimiter.
func (d *Decoder) Buffered() int {
	return len(d.buffer) + len(d.pending)
}

func (d *Decoder) finish() {
	d.finished = true
	d.buffer = ""
	d.pending = nil
}

// decode runs chunk through the UTF-8 decoder, carrying an incomplete trailing
// rune over to the next call. Invalid sequences become U+FFFD.
func (d *Decoder) decode(chunk []byte) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
	}

	var out strings.Builder
	for {
		nDst, nSrc, err := d.text.Transform(d.scratch[:], src, false)
		out.Write(d.scratch[:nDst])
		src = src[nSrc:]

		if err == transform.ErrShortDst && (nDst > 0 || nSrc > 0) {
			continue
		}
		break
	}

	d.pending = append([]byte(nil), src...)
	return out.String()
}

// parseSegment extracts the event carried by one block.
// Blocks without a data line are keep-alive noise and report false.
func parseSegment(segment string) (Event, bool) {
	payload, ok := dataPayload(segment)
	if !ok {
		return Event{}, false
	}

	switch {
	case payload == DoneSentinel:
		return Event{Kind: KindDone}, true
	case strings.HasPrefix(payload, ErrorSentinel):
		return Event{Kind: KindError, Payload: errorMessage(payload)}, true
	default:
		return Event{Kind: KindData, Payload: payload}, true
	}
}

// dataPayload returns everything after the marker of the first line that
// starts with DataPrefix. Lines following it stay part of the payload.
func dataPayload(segment string) (string, bool) {
	offset := 0
	for {
		if strings.HasPrefix(segment[offset:], DataPrefix) {
			return segment[offset+len(DataPrefix):], true
		}

		next := strings.IndexByte(segment[offset:], '\n')
		if next < 0 {
			return "", false
		}
		offset += next + 1
	}
}

// errorMessage strips the sentinel and exactly one separator rune.
func errorMessage(payload string) string {
	rest := payload[len(ErrorSentinel):]
	if rest == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(rest)
	return rest[size:]
}
