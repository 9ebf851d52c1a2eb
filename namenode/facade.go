package namenode

import (
	"fmt"

	"nnrpc/codec"
	"nnrpc/future"
	"nnrpc/session"
)

// Client is the RPC façade: one typed Go method per NameNode RPC,
// each delegating into callPrimitive or callObject below. It owns no
// state of its own beyond the session it wraps.
type Client struct {
	sess *session.Session
}

// New wraps an already-connected, already-authenticated session.
func New(sess *session.Session) *Client {
	return &Client{sess: sess}
}

// callPrimitive implements the primitive-return half of spec §4.6,
// directly mirroring _HDFS_PRIM_RPC_BODY: invoke, await, assert the
// tag matches or is a protocol exception (anything else is a hard
// assertion failure — codec/server disagreement, not a recoverable
// condition), and hand back the raw object for the typed wrapper to
// unwrap.
func (c *Client) callPrimitive(name string, args ...any) (*codec.Object, error) {
	m, err := lookup(name, c.sess.Dialect())
	if err != nil {
		return nil, err
	}
	slot := future.NewSlot()
	if err := c.sess.Invoke(name, args, slot); err != nil {
		return nil, err
	}
	obj := c.sess.Await(slot)
	if obj.Tag != m.tag && obj.Tag != codec.TagProtocolException {
		panic(fmt.Sprintf("namenode: %s: server returned unexpected tag %v (want %v)", name, obj.Tag, m.tag))
	}
	return obj, nil
}

// callObject implements the object-return half of spec §4.6,
// mirroring _HDFS_OBJ_RPC_BODY: same as callPrimitive but a typed
// null (Tag == TagNull, DeclaredType == the expected tag) is also
// valid, since an object-return RPC may legitimately have nothing to
// report (e.g. getFileInfo on a path that doesn't exist).
func (c *Client) callObject(name string, args ...any) (*codec.Object, error) {
	m, err := lookup(name, c.sess.Dialect())
	if err != nil {
		return nil, err
	}
	slot := future.NewSlot()
	if err := c.sess.Invoke(name, args, slot); err != nil {
		return nil, err
	}
	obj := c.sess.Await(slot)
	ok := obj.Tag == m.tag ||
		obj.Tag == codec.TagProtocolException ||
		(obj.Tag == codec.TagNull && obj.DeclaredType == m.tag)
	if !ok {
		panic(fmt.Sprintf("namenode: %s: server returned unexpected tag %v (want %v or typed null)", name, obj.Tag, m.tag))
	}
	return obj, nil
}

func asException(obj *codec.Object) *codec.ProtocolException {
	if obj.Tag != codec.TagProtocolException {
		return nil
	}
	pe, _ := obj.Value.(*codec.ProtocolException)
	return pe
}

func asLong(obj *codec.Object) int64 {
	v, _ := obj.Value.(int64)
	return v
}

func asBool(obj *codec.Object) bool {
	v, _ := obj.Value.(bool)
	return v
}

// --- primitive-return RPCs ---

func (c *Client) GetProtocolVersion(protocolName string, clientVersion int64) (int64, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("getProtocolVersion", protocolName, clientVersion)
	if err != nil {
		return 0, nil, err
	}
	if pe := asException(obj); pe != nil {
		return 0, pe, nil
	}
	return asLong(obj), nil, nil
}

func (c *Client) Create(path string, perms int, clientName string, overwrite, createParent bool, replication int, blocksize int64) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("create", path, perms, clientName, overwrite, createParent, replication, blocksize)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) SetReplication(path string, replication int) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setReplication", path, replication)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) SetPermission(path string, perms int) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setPermission", path, perms)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) SetOwner(path, owner, group string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setOwner", path, owner, group)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) AbandonBlock(block *codec.Object, path, clientName string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("abandonBlock", block, path, clientName)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) Complete(path, clientName string, lastBlock *codec.Object) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("complete", path, clientName, lastBlock)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) Rename(src, dst string) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("rename", src, dst)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) Delete(path string, recursive bool) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("delete", path, recursive)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) Mkdirs(path string, perms int, createParent bool) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("mkdirs", path, perms, createParent)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) RenewLease(clientName string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("renewLease", clientName)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) GetPreferredBlockSize(path string) (int64, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("getPreferredBlockSize", path)
	if err != nil {
		return 0, nil, err
	}
	if pe := asException(obj); pe != nil {
		return 0, pe, nil
	}
	return asLong(obj), nil, nil
}

func (c *Client) SetQuota(path string, nsQuota, dsQuota int64) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setQuota", path, nsQuota, dsQuota)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) Fsync(path, clientName string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("fsync", path, clientName)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) SetTimes(path string, mtime, atime int64) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setTimes", path, mtime, atime)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) RecoverLease(path, clientName string) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("recoverLease", path, clientName)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) Concat(target string, srcs []string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("concat", target, srcs)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) CancelDelegationToken(token *codec.Object) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("cancelDelegationToken", token)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) RenewDelegationToken(token *codec.Object) (int64, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("renewDelegationToken", token)
	if err != nil {
		return 0, nil, err
	}
	if pe := asException(obj); pe != nil {
		return 0, pe, nil
	}
	return asLong(obj), nil, nil
}

func (c *Client) SetSafeMode(action string) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setSafeMode", action)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) ReportBadBlocks(blocks []*codec.Object) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("reportBadBlocks", blocks)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) FinalizeUpgrade() (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("finalizeUpgrade")
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) RefreshNodes() (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("refreshNodes")
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) SaveNamespace() (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("saveNamespace")
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) MetaSave(filename string) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("metaSave", filename)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) SetBalancerBandwidth(bandwidth int64) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("setBalancerBandwidth", bandwidth)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

func (c *Client) IsFileClosed(path string) (bool, *codec.ProtocolException, error) {
	obj, err := c.callPrimitive("isFileClosed", path)
	if err != nil {
		return false, nil, err
	}
	if pe := asException(obj); pe != nil {
		return false, pe, nil
	}
	return asBool(obj), nil, nil
}

func (c *Client) CreateSymlink(target, link string, dirPerms int, createParent bool) (*codec.ProtocolException, error) {
	obj, err := c.callPrimitive("createSymlink", target, link, dirPerms, createParent)
	if err != nil {
		return nil, err
	}
	return asException(obj), nil
}

// --- object-return RPCs ---

func (c *Client) GetBlockLocations(path string, offset, length int64) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getBlockLocations", path, offset, length)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) Append(path, clientName string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("append", path, clientName)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) AddBlock(path, clientName string, previous *codec.Object, excludes []*codec.Object) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("addBlock", path, clientName, previous, excludes)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetListing(path string, startAfter []byte, needLocation bool) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getListing", path, startAfter, needLocation)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetStats() (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getStats")
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetFileInfo(path string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getFileInfo", path)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetContentSummary(path string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getContentSummary", path)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetDelegationToken(renewer string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getDelegationToken", renewer)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetDatanodeReport(kind string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getDatanodeReport", kind)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) DistributedUpgradeProgress(action string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("distributedUpgradeProgress", action)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

// GetServerDefaults, GetFileLinkInfo and GetLinkTarget below, and
// CreateSymlink above, are valid only against dialect v2;
// callObject/callPrimitive reject them up front via lookup for a v1
// session.

func (c *Client) GetServerDefaults() (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getServerDefaults")
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetFileLinkInfo(path string) (*codec.Object, *codec.ProtocolException, error) {
	obj, err := c.callObject("getFileLinkInfo", path)
	if err != nil {
		return nil, nil, err
	}
	if pe := asException(obj); pe != nil {
		return nil, pe, nil
	}
	return obj, nil, nil
}

func (c *Client) GetLinkTarget(path string) (string, *codec.ProtocolException, error) {
	obj, err := c.callObject("getLinkTarget", path)
	if err != nil {
		return "", nil, err
	}
	if pe := asException(obj); pe != nil {
		return "", pe, nil
	}
	s, _ := obj.Value.(string)
	return s, nil, nil
}
