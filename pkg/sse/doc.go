// Package sse decodes the server-push event stream emitted by the twin backend.
//
// The wire format is line oriented. Each event block carries one "data: " line
// and blocks are separated by a blank line:
//
//	data: Hello
//
//	data: [DONE]
//
// Two payloads are reserved:
//
//   - [DONE] ends the stream normally
//   - [ERROR] <message> ends the stream with a remote failure
//
// Any other payload is opaque application data.
//
// # Usage
//
//	dec := sse.NewDecoder()
//	for _, ev := range dec.Feed(chunk) {
//		switch ev.Kind {
//		case sse.KindData:
//			fmt.Print(ev.Payload)
//		case sse.KindDone:
//			return nil
//		case sse.KindError:
//			return errors.New(ev.Payload)
//		}
//	}
//
// Chunk boundaries carry no meaning. A block, the "data: " marker, a sentinel or
// a multi-byte character may be split across any number of Feed calls and the
// decoder yields the same events as if the stream had arrived in one piece.
package sse
