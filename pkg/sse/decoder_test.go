package sse

import (
	"reflect"
	"testing"
)

func feedAll(d *Decoder, chunks ...string) []Event {
	var events []Event
	for _, c := range chunks {
		events = append(events, d.Feed([]byte(c))...)
	}
	return events
}

func TestDecoder_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []Event
	}{
		{
			name:   "payload split across chunks",
			chunks: []string{"data: hel", "lo\n\n"},
			want:   []Event{{Kind: KindData, Payload: "hello"}},
		},
		{
			name:   "several blocks in one chunk",
			chunks: []string{"data: a\n\ndata: b\n\ndata: c"},
			want: []Event{
				{Kind: KindData, Payload: "a"},
				{Kind: KindData, Payload: "b"},
			},
		},
		{
			name:   "done sentinel",
			chunks: []string{"data: [DONE]\n\n"},
			want:   []Event{{Kind: KindDone}},
		},
		{
			name:   "error sentinel",
			chunks: []string{"data: [ERROR] bad key\n\n"},
			want:   []Event{{Kind: KindError, Payload: "bad key"}},
		},
		{
			name:   "error sentinel with colon separator",
			chunks: []string{"data: [ERROR]: upstream timeout\n\n"},
			want:   []Event{{Kind: KindError, Payload: " upstream timeout"}},
		},
		{
			name:   "block without data line is dropped",
			chunks: []string{": keep-alive\n\nevent: ping\n\ndata: x\n\n"},
			want:   []Event{{Kind: KindData, Payload: "x"}},
		},
		{
			name:   "data line after other fields",
			chunks: []string{"event: message\ndata: hi\n\n"},
			want:   []Event{{Kind: KindData, Payload: "hi"}},
		},
		{
			name:   "embedded newline kept verbatim",
			chunks: []string{"data: line one\nline two\n\n"},
			want:   []Event{{Kind: KindData, Payload: "line one\nline two"}},
		},
		{
			name:   "data without space is not a data line",
			chunks: []string{"data:x\n\n"},
			want:   nil,
		},
		{
			name:   "nothing before terminal delimiter",
			chunks: []string{"data: partial"},
			want:   nil,
		},
		{
			name:   "events after done are ignored",
			chunks: []string{"data: a\n\ndata: [DONE]\n\ndata: b\n\n"},
			want: []Event{
				{Kind: KindData, Payload: "a"},
				{Kind: KindDone},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feedAll(NewDecoder(), tt.chunks...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecoder_ErrorMessageBoundary(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{payload: "[ERROR]", want: ""},
		{payload: "[ERROR] ", want: ""},
		{payload: "[ERROR]x", want: ""},
		{payload: "[ERROR]bad", want: "ad"},
		{payload: "[ERROR]  two spaces", want: " two spaces"},
		{payload: "[ERROR]éclair", want: "clair"},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			events := NewDecoder().Feed([]byte("data: " + tt.payload + "\n\n"))
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Kind != KindError {
				t.Errorf("Kind = %q, want %q", events[0].Kind, KindError)
			}
			if events[0].Payload != tt.want {
				t.Errorf("Payload = %q, want %q", events[0].Payload, tt.want)
			}
		})
	}
}

func TestDecoder_DoneIsIdempotent(t *testing.T) {
	d := NewDecoder()

	events := d.Feed([]byte("data: [DONE]\n\n"))
	if len(events) != 1 || events[0].Kind != KindDone {
		t.Fatalf("first feed = %#v, want one Done event", events)
	}
	if !d.Finished() {
		t.Error("Finished() = false after Done")
	}

	for _, chunk := range []string{"data: more\n\n", "data: [DONE]\n\n", "data: [ERROR] x\n\n"} {
		if got := d.Feed([]byte(chunk)); got != nil {
			t.Errorf("Feed(%q) after Done = %#v, want nil", chunk, got)
		}
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d after Done, want 0", d.Buffered())
	}
}

func TestDecoder_ErrorFinishes(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("data: [ERROR] boom\n\n"))

	if !d.Finished() {
		t.Error("Finished() = false after Error")
	}
	if got := d.Feed([]byte("data: late\n\n")); got != nil {
		t.Errorf("Feed after Error = %#v, want nil", got)
	}
}

// TestDecoder_ChunkBoundaryInvariance splits the stream at every possible
// position, including inside the marker, the sentinels and multi-byte runes.
func TestDecoder_ChunkBoundaryInvariance(t *testing.T) {
	streams := []string{
		"data: hello\n\ndata: wörld 你好 🚀\n\n: ping\n\ndata: [DONE]\n\n",
		"data: first\n\ndata: [ERROR] bad key\n\ndata: ignored\n\n",
		"event: x\ndata: multi\nline\n\ndata: tail without delimiter",
	}

	for _, stream := range streams {
		want := NewDecoder().Feed([]byte(stream))

		for i := 0; i <= len(stream); i++ {
			got := feedAll(NewDecoder(), stream[:i], stream[i:])
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("split at %d: events = %#v, want %#v", i, got, want)
			}
		}

		for i := 0; i <= len(stream); i++ {
			for j := i; j <= len(stream); j++ {
				got := feedAll(NewDecoder(), stream[:i], stream[i:j], stream[j:])
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("split at %d,%d: events = %#v, want %#v", i, j, got, want)
				}
			}
		}

		d := NewDecoder()
		var got []Event
		for i := 0; i < len(stream); i++ {
			got = append(got, d.Feed([]byte{stream[i]})...)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("byte-at-a-time: events = %#v, want %#v", got, want)
		}
	}
}

func TestDecoder_SplitMultiByteRune(t *testing.T) {
	raw := []byte("data: 你好\n\n")
	// "你" starts at byte 6 and is three bytes long.
	d := NewDecoder()
	if got := d.Feed(raw[:7]); got != nil {
		t.Fatalf("first feed = %#v, want nil", got)
	}
	if d.Buffered() == 0 {
		t.Error("Buffered() = 0, want partial rune held back")
	}
	got := d.Feed(raw[7:])
	want := []Event{{Kind: KindData, Payload: "你好"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %#v, want %#v", got, want)
	}
}

func TestDecoder_InvalidBytesAreReplaced(t *testing.T) {
	d := NewDecoder()
	got := feedAll(d, "data: a\xffb\n\n", "data: ok\n\n")
	want := []Event{
		{Kind: KindData, Payload: "a�b"},
		{Kind: KindData, Payload: "ok"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %#v, want %#v", got, want)
	}
}

func TestDecoder_LargeChunk(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = 'a' + byte(i%26)
	}

	events := NewDecoder().Feed([]byte("data: " + string(payload) + "\n\n"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Payload != string(payload) {
		t.Errorf("payload length = %d, want %d", len(events[0].Payload), len(payload))
	}
}

func TestEvent_Terminal(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindData, false},
		{KindDone, true},
		{KindError, true},
	}
	for _, tt := range tests {
		if got := (Event{Kind: tt.kind}).Terminal(); got != tt.want {
			t.Errorf("Event{%q}.Terminal() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
