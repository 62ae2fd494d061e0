// Package server serves documents to native hosts over WebSocket.
//
// A host connects to the configured path and sends a HostHello. The server
// answers with a ServerHello, creates a session and mounts the App into
// the host's root container. From then on the host receives every view
// operation as a Calls frame and sends its touch and generic events back
// as Event frames.
//
// # Session Lifecycle
//
// Each session owns a hostdom.Runtime whose host is a chain of decorators:
//
//	Runtime -> TracedHost (optional) -> Journal -> RemoteHost
//
// The Journal numbers and retains every call. When a connection drops,
// the session waits ResumeWindow for the host to reconnect with its
// SessionID and the last sequence number it applied; the missed calls
// are then replayed with the replay flag set, followed by ResyncDone.
// A host may also request a resync on a live connection.
//
// Each connection runs two goroutines:
//   - the read loop decodes Event, Control and Ack frames
//   - the write loop sends heartbeat pings
//
// All document work happens on the session's loop goroutine.
//
// # Example Usage
//
//	srv := server.New(server.DefaultConfig(), func(doc *dom.Document) error {
//	    view := doc.CreateElement("view")
//	    view.AppendChild(doc.CreateTextNode("hello"))
//	    return doc.AppendChild(view)
//	})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
//   - GET /host: the WebSocket endpoint (Config.Path)
//   - GET /healthz: liveness
//   - GET /metrics: Prometheus metrics, when WithMetrics is set
package server
