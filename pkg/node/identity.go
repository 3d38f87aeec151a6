package node

import (
	"slices"
	"sync/atomic"
)

type identitySnapshot struct {
	id      string
	nodeIDs []string
}

// Identity is this node's id and the ids of every node in the cluster. It is
// set once by the init handshake and read-only afterwards.
type Identity struct {
	state atomic.Pointer[identitySnapshot]
}

// Init publishes the identity. Only the first successful call has any effect.
func (i *Identity) Init(id string, nodeIDs []string) error {
	if id == "" {
		return ErrInvalidInit
	}

	snap := &identitySnapshot{
		id:      id,
		nodeIDs: slices.Clone(nodeIDs),
	}
	if !i.state.CompareAndSwap(nil, snap) {
		return ErrAlreadyInitialized
	}
	return nil
}

func (i *Identity) Initialized() bool {
	return i.state.Load() != nil
}

// Require returns ErrUninitialized until the handshake has completed.
func (i *Identity) Require() error {
	if !i.Initialized() {
		return ErrUninitialized
	}
	return nil
}

// ID returns the empty string before init.
func (i *Identity) ID() string {
	snap := i.state.Load()
	if snap == nil {
		return ""
	}
	return snap.id
}

// NodeIDs returns every node in the cluster, this one included.
func (i *Identity) NodeIDs() []string {
	snap := i.state.Load()
	if snap == nil {
		return nil
	}
	return slices.Clone(snap.nodeIDs)
}

// Peers returns every node in the cluster except this one.
func (i *Identity) Peers() []string {
	snap := i.state.Load()
	if snap == nil {
		return nil
	}

	out := make([]string, 0, len(snap.nodeIDs))
	for _, id := range snap.nodeIDs {
		if id != snap.id {
			out = append(out, id)
		}
	}
	return out
}

func (i *Identity) Contains(id string) bool {
	snap := i.state.Load()
	if snap == nil {
		return false
	}
	return slices.Contains(snap.nodeIDs, id)
}
