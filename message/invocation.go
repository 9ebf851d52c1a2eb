// Package message defines the request envelope exchanged between the
// session engine and the codec collaborator.
//
// It plays the role an RPCMessage envelope plays elsewhere: a stable,
// codec-agnostic type the rest of the module passes around, themed
// around "RPC name + positional arguments + message number" rather
// than "service method + JSON payload".
package message

// Invocation is a request envelope: an RPC name, its arguments, and a
// message number stamped on it by session.Invoke immediately before
// serialization (spec §4.2 step 3). Response objects are not modeled
// here — they are the codec's opaque, tagged Object (see package
// codec), since the engine only ever inspects a response's tag.
type Invocation struct {
	Msgno int64
	Name  string
	Args  []any
}
