package btclibwallet

import (
	"github.com/btcsuite/btcd/wire"
)

// SyncEventType identifies the kind of a SyncEvent.
type SyncEventType int

const (
	SyncEventConnected SyncEventType = iota
	SyncEventDisconnected
	SyncEventSyncStarted
	SyncEventSyncStopped
	SyncEventSyncProgress
	SyncEventBlockHeightUpdated
	SyncEventTxnsUpdated
	SyncEventTxnSubmitted
	SyncEventSetBlocks
	SyncEventAddBlocks
	SyncEventSetPeers
	SyncEventAddPeers
)

// String returns a human readable name for the event type.
func (t SyncEventType) String() string {
	switch t {
	case SyncEventConnected:
		return "connected"
	case SyncEventDisconnected:
		return "disconnected"
	case SyncEventSyncStarted:
		return "sync_started"
	case SyncEventSyncStopped:
		return "sync_stopped"
	case SyncEventSyncProgress:
		return "sync_progress"
	case SyncEventBlockHeightUpdated:
		return "block_height_updated"
	case SyncEventTxnsUpdated:
		return "txns_updated"
	case SyncEventTxnSubmitted:
		return "txn_submitted"
	case SyncEventSetBlocks:
		return "set_blocks"
	case SyncEventAddBlocks:
		return "add_blocks"
	case SyncEventSetPeers:
		return "set_peers"
	case SyncEventAddPeers:
		return "add_peers"
	default:
		return "unknown"
	}
}

// SyncStoppedPayload carries the reason a sync ended. Reason 0 is success,
// any other value is an error.
type SyncStoppedPayload struct {
	Reason int32
}

// SyncProgressPayload reports sync progress as a percentage strictly between
// 0 and 100; the endpoints are encoded by SyncStarted and SyncStopped
// respectively.
type SyncProgressPayload struct {
	Timestamp uint64
	Percent   float64
}

// BlockHeightPayload carries a newly observed network block height.
type BlockHeightPayload struct {
	Height uint64
}

// TxnSubmittedPayload reports the outcome of a Submit call. The transaction
// is the caller's; it must not be mutated by listeners.
type TxnSubmittedPayload struct {
	Transaction *wire.MsgTx
	Error       int32
}

// BlocksPayload carries merkle blocks the network backend wants persisted.
type BlocksPayload struct {
	Blocks []*MerkleBlock
}

// PeersPayload carries peer records the network backend wants persisted.
type PeersPayload struct {
	Peers []Peer
}

// SyncEvent is a single entry in the manager's totally ordered lifecycle
// stream. Only the payload field matching the event type is set.
type SyncEvent struct {
	Type SyncEventType

	SyncStopped  *SyncStoppedPayload
	SyncProgress *SyncProgressPayload
	BlockHeight  *BlockHeightPayload
	Submitted    *TxnSubmittedPayload
	Blocks       *BlocksPayload
	Peers        *PeersPayload
}

// SyncEventListener receives the sync manager's lifecycle events.
//
// State-transition events (Connected, Disconnected, SyncStarted, SyncStopped,
// SyncProgress and BlockHeightUpdated) are delivered while the manager's
// state mutex is held, so that the order of delivery is a linearization of
// the state changes. The remaining events are delivered outside the mutex.
//
// Because transition events arrive under the lock, OnSyncEvent must not call
// back into the manager synchronously; doing so deadlocks. Hand off to
// another goroutine if a reaction requires a manager call.
type SyncEventListener interface {
	OnSyncEvent(event *SyncEvent)
}
