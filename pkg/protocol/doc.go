// Package protocol implements the binary wire format spoken between a
// hostdom server and a remote host.
//
// The server owns the document. The host owns the native views. Host calls
// (createView, updateView, manageChildren, setChildren) flow from server to
// host, and native events flow back.
//
// # Wire Format
//
// Every message is framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHandshake (0x00): HostHello and ServerHello
//   - FrameEvent (0x01): host to server events
//   - FrameCalls (0x02): server to host call batches
//   - FrameControl (0x03): ping, pong, resync and close
//   - FrameAck (0x04): highest call sequence the host applied
//   - FrameError (0x05): error report
//
// # Values
//
// Props and event payloads are trees of nil, bool, integer, float, string,
// list and string-keyed map values. Each value is prefixed with a one-byte
// tag; see WriteValue. Map keys are written in sorted order so identical
// props always encode to identical bytes.
//
// # Handshake
//
//	Host                            Server
//	  │                                │
//	  │──── HostHello ────────────────>│
//	  │     (version, root, last seq)  │
//	  │                                │
//	  │<──── ServerHello ──────────────│
//	  │     (status, session, time)    │
//	  │                                │
package protocol
