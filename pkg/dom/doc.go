// Package dom implements a small browser-like document whose mutations are
// delivered to a native UI host as an ordered stream of view commands.
//
// # Overview
//
// A Session owns everything that belongs to one on-screen document: the
// Registry that hands out node tags, the Bridge that queues and drains host
// commands, and the current Document. Nodes are created through the
// Document and never talk to the host directly. Every structural change,
// attribute write or style write is recorded on the node's Binding, which
// enqueues a Command on the Bridge. The Bridge executes one command per
// scheduler tick, translating it into Host calls.
//
//	s := dom.NewSession(h, loop)
//	doc := s.CreateDocument(1)
//	view := doc.CreateElement("View")
//	view.AppendChild(doc.CreateTextNode("hello"))
//	doc.AppendChild(view)
//
// # Children diff
//
// Structural changes are submitted as two snapshots of child tags, taken
// before and after the mutation. When the command drains, DiffChildren turns
// the pair into a single ManageChildren call. Children that keep their
// index are never mentioned in the call.
//
// # Events
//
// Host events enter through the Emitter, are queued like any other command,
// and are dispatched as trusted Events with capture, target and bubble
// phases. Listener panics are recovered and reported on the next tick so
// that one listener can never abort a dispatch.
//
// # Threading
//
// A Session is not safe for concurrent use. All calls, including those made
// by host event callbacks, must happen on the goroutine that runs the
// session's scheduler.
package dom
