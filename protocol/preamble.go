// Package protocol owns the wire-level constants the session engine
// writes directly, outside of anything the codec frames: the
// connection preamble and the protocol dialect markers.
//
// Only the fixed constants (magic number, version byte) live here; no
// separate per-frame header type is defined, because frames here are
// self-delimited inside the codec rather than wrapped in a separate
// fixed header — see DESIGN.md.
package protocol

// Preamble is written exactly once, immediately after TCP connect,
// before any framed traffic: "hrpc" followed by the version byte 0x04
// and the auth-kind byte 0x50 (spec §6).
var Preamble = [6]byte{'h', 'r', 'p', 'c', 0x04, 0x50}

// Dialect selects which of the two NameNode RPC wire dialects a
// session speaks, chosen once at construction time (spec §6).
type Dialect int

const (
	// DialectV1 is the original protocol; getServerDefaults,
	// getFileLinkInfo, createSymlink, and getLinkTarget are not valid
	// against it.
	DialectV1 Dialect = iota
	// DialectV2 adds getServerDefaults, getFileLinkInfo, createSymlink,
	// and getLinkTarget.
	DialectV2
)

func (d Dialect) String() string {
	switch d {
	case DialectV1:
		return "v1"
	case DialectV2:
		return "v2"
	default:
		return "unknown"
	}
}

// AuthHeader is the connection-header object sent immediately after
// the preamble, carrying the username the NameNode should authenticate
// the connection as (spec §4.1 authenticate).
type AuthHeader struct {
	Username string
}
