// Package codec is the external collaborator the RPC engine in package
// session delegates all object serialization to. The engine inspects
// only the Tag on a decoded Object — never field contents — so this
// package owns the entire wire representation of invocations and
// responses.
//
// Two concrete codecs are provided, selectable per session: Binary
// (compact, hand-rolled field encoding) and JSON (human-readable, used
// in tests that want to eyeball wire traffic).
package codec

import (
	"fmt"

	"nnrpc/message"
)

// Tag identifies the shape of a decoded Object. The engine switches
// on Tag alone; it never inspects Value's internal structure.
type Tag byte

const (
	TagVoid Tag = iota
	TagBoolean
	TagLong
	TagString
	TagNull              // a typed null; DeclaredType on Object names what was expected
	TagProtocolException // server-reported RPC failure

	// Object-return tags, one per §6 "object return" RPC family.
	TagLocatedBlocks
	TagLocatedBlock
	TagDirectoryListing
	TagFsStats
	TagFileStatus
	TagContentSummary
	TagDelegationToken
	TagDatanodeReport
	TagUpgradeStatusReport
	TagServerDefaults
	TagFileLinkInfo
)

func (t Tag) String() string {
	switch t {
	case TagVoid:
		return "Void"
	case TagBoolean:
		return "Boolean"
	case TagLong:
		return "Long"
	case TagString:
		return "String"
	case TagNull:
		return "Null"
	case TagProtocolException:
		return "ProtocolException"
	case TagLocatedBlocks:
		return "LocatedBlocks"
	case TagLocatedBlock:
		return "LocatedBlock"
	case TagDirectoryListing:
		return "DirectoryListing"
	case TagFsStats:
		return "FsStats"
	case TagFileStatus:
		return "FileStatus"
	case TagContentSummary:
		return "ContentSummary"
	case TagDelegationToken:
		return "DelegationToken"
	case TagDatanodeReport:
		return "DatanodeReport"
	case TagUpgradeStatusReport:
		return "UpgradeStatusReport"
	case TagServerDefaults:
		return "ServerDefaults"
	case TagFileLinkInfo:
		return "FileLinkInfo"
	default:
		return fmt.Sprintf("Tag(%d)", byte(t))
	}
}

// Object is the opaque tagged value the codec hands the engine. The
// engine only ever reads Tag (and, for a typed null, DeclaredType);
// Value carries the actual payload for whoever requested the call.
type Object struct {
	Tag          Tag
	DeclaredType Tag // meaningful only when Tag == TagNull
	Value        any
}

// ProtocolException is the distinguished server-reported error object.
// It is carried as the Value of an Object tagged TagProtocolException.
type ProtocolException struct {
	ClassName string
	Message   string
}

func (e *ProtocolException) Error() string {
	return fmt.Sprintf("%s: %s", e.ClassName, e.Message)
}

// Status is the tri-state result of Deserialize.
type Status int

const (
	// StatusIncomplete means fewer bytes than one full frame are
	// buffered; the caller must read more off the socket.
	StatusIncomplete Status = iota
	// StatusInvalid means the buffered bytes can never form a valid
	// frame — a fatal protocol violation.
	StatusInvalid
	// StatusOK means Record is populated with one complete frame.
	StatusOK
)

// Record is one fully-parsed response frame.
type Record struct {
	Msgno     int64
	Object    *Object
	FrameSize int // bytes consumed from the head of the probed slice
}

// Codec is the fixed interface the engine depends on (spec §6). It
// never needs to construct an Object itself — only Invocations, via
// BuildInvocation — and never inspects a Record's Object beyond Tag.
type Codec interface {
	// BuildInvocation constructs a request envelope for RPC name with
	// the given positional arguments. Msgno is left zero; the caller
	// (session.Invoke) sets it via SetMsgno.
	BuildInvocation(name string, args ...any) *message.Invocation

	// SetMsgno stamps a message number onto an invocation in place.
	SetMsgno(inv *message.Invocation, msgno int64)

	// Serialize encodes v, which must be *message.Invocation (the request
	// path) or *Record (the response path, used only by test
	// fixtures standing in for a real NameNode), into a self-delimited
	// wire frame.
	Serialize(v any) ([]byte, error)

	// Deserialize attempts to parse exactly one frame from the head
	// of data. It never consumes from data itself; the caller advances
	// its own buffer by Record.FrameSize on StatusOK.
	Deserialize(data []byte) (*Record, Status)

	// Free releases any resources associated with an object produced
	// by this codec. The Go implementations have nothing to release
	// (the garbage collector owns Object.Value); the method exists so
	// callers that mirror the source's explicit free-after-use
	// discipline have somewhere to put it.
	Free(obj *Object)
}
