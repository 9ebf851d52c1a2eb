// Package namenode is the RPC façade: one Go method per NameNode RPC.
// The per-RPC methods in facade.go are written out individually, not
// generated; each is a uniform wrapper that delegates to callPrimitive
// or callObject, which take the expected response tag and the dialect
// restriction from the shared table below. The table and those two
// call functions are grounded on
// original_source/src/highlevel.c's _HDFS_PRIM_RPC_BODY and
// _HDFS_OBJ_RPC_BODY macros: every RPC in this package expands through
// exactly one of those two bodies there, and through exactly one of
// callPrimitive/callObject here.
package namenode

import (
	"fmt"

	"nnrpc/codec"
	"nnrpc/protocol"
)

// kind distinguishes the two RPC shapes the source's macros expand:
// primitive return (the object is unwrapped to a Go scalar) and object
// return (the object, or a typed null, is handed back whole).
type kind int

const (
	kindPrimitive kind = iota
	kindObject
)

// method describes one entry in the RPC table: its wire name, its
// shape, the tag a successful response must carry, and whether it
// requires dialect v2.
type method struct {
	name   string
	kind   kind
	tag    codec.Tag
	v2Only bool
}

// methods is the full table backing spec §6's RPC method list. Every
// name here has exactly one entry; facade.go's generic call functions
// are the only code that reads it.
var methods = map[string]method{
	"getProtocolVersion":    {"getProtocolVersion", kindPrimitive, codec.TagLong, false},
	"create":                {"create", kindPrimitive, codec.TagVoid, false},
	"setReplication":        {"setReplication", kindPrimitive, codec.TagBoolean, false},
	"setPermission":         {"setPermission", kindPrimitive, codec.TagVoid, false},
	"setOwner":              {"setOwner", kindPrimitive, codec.TagVoid, false},
	"abandonBlock":          {"abandonBlock", kindPrimitive, codec.TagVoid, false},
	"complete":              {"complete", kindPrimitive, codec.TagBoolean, false},
	"rename":                {"rename", kindPrimitive, codec.TagBoolean, false},
	"delete":                {"delete", kindPrimitive, codec.TagBoolean, false},
	"mkdirs":                {"mkdirs", kindPrimitive, codec.TagBoolean, false},
	"renewLease":            {"renewLease", kindPrimitive, codec.TagVoid, false},
	"getPreferredBlockSize": {"getPreferredBlockSize", kindPrimitive, codec.TagLong, false},
	"setQuota":              {"setQuota", kindPrimitive, codec.TagVoid, false},
	"fsync":                 {"fsync", kindPrimitive, codec.TagVoid, false},
	"setTimes":              {"setTimes", kindPrimitive, codec.TagVoid, false},
	"recoverLease":          {"recoverLease", kindPrimitive, codec.TagBoolean, false},
	"concat":                {"concat", kindPrimitive, codec.TagVoid, false},
	"cancelDelegationToken": {"cancelDelegationToken", kindPrimitive, codec.TagVoid, false},
	"renewDelegationToken":  {"renewDelegationToken", kindPrimitive, codec.TagLong, false},
	"setSafeMode":           {"setSafeMode", kindPrimitive, codec.TagBoolean, false},
	"reportBadBlocks":       {"reportBadBlocks", kindPrimitive, codec.TagVoid, false},
	"finalizeUpgrade":       {"finalizeUpgrade", kindPrimitive, codec.TagVoid, false},
	"refreshNodes":          {"refreshNodes", kindPrimitive, codec.TagVoid, false},
	"saveNamespace":         {"saveNamespace", kindPrimitive, codec.TagVoid, false},
	"metaSave":              {"metaSave", kindPrimitive, codec.TagVoid, false},
	"setBalancerBandwidth":  {"setBalancerBandwidth", kindPrimitive, codec.TagVoid, false},
	"isFileClosed":          {"isFileClosed", kindPrimitive, codec.TagBoolean, false},
	"createSymlink":         {"createSymlink", kindPrimitive, codec.TagVoid, true},

	"getBlockLocations":          {"getBlockLocations", kindObject, codec.TagLocatedBlocks, false},
	"append":                     {"append", kindObject, codec.TagLocatedBlock, false},
	"addBlock":                   {"addBlock", kindObject, codec.TagLocatedBlock, false},
	"getListing":                 {"getListing", kindObject, codec.TagDirectoryListing, false},
	"getStats":                   {"getStats", kindObject, codec.TagFsStats, false},
	"getFileInfo":                {"getFileInfo", kindObject, codec.TagFileStatus, false},
	"getContentSummary":          {"getContentSummary", kindObject, codec.TagContentSummary, false},
	"getDelegationToken":         {"getDelegationToken", kindObject, codec.TagDelegationToken, false},
	"getDatanodeReport":          {"getDatanodeReport", kindObject, codec.TagDatanodeReport, false},
	"distributedUpgradeProgress": {"distributedUpgradeProgress", kindObject, codec.TagUpgradeStatusReport, false},
	"getServerDefaults":          {"getServerDefaults", kindObject, codec.TagServerDefaults, true},
	"getFileLinkInfo":            {"getFileLinkInfo", kindObject, codec.TagFileLinkInfo, true},
	"getLinkTarget":              {"getLinkTarget", kindObject, codec.TagString, true},
}

// lookup fetches a table entry and checks it against the session's
// wire dialect, mirroring the _HDFS2_*_DECL split in highlevel.c where
// v2-only entry points simply don't exist in a v1 build.
func lookup(name string, dialect protocol.Dialect) (method, error) {
	m, ok := methods[name]
	if !ok {
		return method{}, fmt.Errorf("namenode: unknown rpc %q", name)
	}
	if m.v2Only && dialect != protocol.DialectV2 {
		return method{}, fmt.Errorf("namenode: rpc %q requires dialect v2, session speaks %s", name, dialect)
	}
	return m, nil
}
