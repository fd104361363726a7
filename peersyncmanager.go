package btclibwallet

import (
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/txhelper"
)

// PeerConnectStatus is the connectivity state a PeerManager reports.
type PeerConnectStatus int

const (
	PeerStatusDisconnected PeerConnectStatus = iota
	PeerStatusConnecting
	PeerStatusConnected
)

// PeerManagerCallbacks are the notifications a PeerManager delivers from its
// own threads. All fields are optional; nil callbacks are skipped.
type PeerManagerCallbacks struct {
	// SyncStarted signals the start of a (full) chain sync.
	SyncStarted func()

	// SyncStopped signals the end of a chain sync; reason 0 means the
	// chain is caught up, anything else is an error. Stopping does not
	// necessarily mean disconnection.
	SyncStopped func(reason int32)

	// TxStatusUpdate signals that transaction or block state changed; it
	// also fires on peer disconnects that produce no SyncStopped.
	TxStatusUpdate func()

	// SaveBlocks asks the host to persist block records; replace
	// indicates a wholesale replacement rather than an append.
	SaveBlocks func(replace bool, blocks []*MerkleBlock)

	// SavePeers asks the host to persist peer records; replace as above.
	SavePeers func(replace bool, peers []Peer)

	// NetworkIsReachable lets the host veto connection attempts.
	NetworkIsReachable func() bool

	// ThreadCleanup runs on a peer manager thread before it exits.
	ThreadCleanup func()
}

// PeerManager is the P2P network backend a peer-mode sync manager adapts.
// Everything long-running happens on the peer manager's own threads and is
// reported through the callbacks.
type PeerManager interface {
	Connect()
	Disconnect()

	// Rescan restarts the chain sync from the earliest height of
	// interest; RescanFromBlockNumber from the given height; and
	// RescanFromLastHardcodedCheckpoint from the last checkpoint built
	// into the chain params.
	Rescan()
	RescanFromBlockNumber(blockNumber uint64)
	RescanFromLastHardcodedCheckpoint()

	// PublishTx broadcasts the transaction, whose ownership passes to
	// the peer manager, and calls done exactly once with the outcome.
	PublishTx(tx *wire.MsgTx, done func(err error))

	LastBlockHeight() uint64
	LastBlockTimestamp() int64

	// SyncProgress reports sync completion in [0, 1] measured from
	// startHeight.
	SyncProgress(startHeight uint64) float64

	ConnectStatus() PeerConnectStatus

	// SetCallbacks must be called before Connect.
	SetCallbacks(callbacks PeerManagerCallbacks)
}

// PeerSyncManager adapts a PeerManager's callbacks into the unified sync
// event model. It owns the peer manager; the wallet is borrowed.
//
// All mutable state is guarded by mtx. State-transition events are delivered
// to the listener while mtx is held; peer manager calls are made outside it.
type PeerSyncManager struct {
	mtx sync.Mutex

	peerManager PeerManager
	wallet      Wallet
	listener    SyncEventListener

	// Known height of the blockchain as reported by the P2P network.
	// Only ever advances.
	networkBlockHeight uint64

	connected bool

	// Whether a full sync is running, versus being caught up and
	// receiving new blocks.
	fullScan bool
}

// NewPeerSyncManager creates a P2P-mode sync manager around peerManager,
// whose ownership passes to the returned manager.
func NewPeerSyncManager(chainParams *ChainParams, w Wallet, listener SyncEventListener,
	peerManager PeerManager, earliestKeyTime int64, blockHeight uint64) *PeerSyncManager {

	var checkpointHeight uint64
	if checkpoint := chainParams.CheckpointBefore(earliestKeyTime - OneWeekInSeconds); checkpoint != nil {
		checkpointHeight = checkpoint.Height
	}

	// The initial sync runs from the blocks previously handed to the
	// peer manager up to the height advertised by the network; the P2P
	// protocol verifies everything it receives, so any API-mode coverage
	// in between is ignored.
	manager := &PeerSyncManager{
		peerManager:        peerManager,
		wallet:             w,
		listener:           listener,
		networkBlockHeight: checkpointHeight,
	}
	if blockHeight > manager.networkBlockHeight {
		manager.networkBlockHeight = blockHeight
	}

	peerManager.SetCallbacks(PeerManagerCallbacks{
		SyncStarted:        manager.onSyncStarted,
		SyncStopped:        manager.onSyncStopped,
		TxStatusUpdate:     manager.onTxStatusUpdate,
		SaveBlocks:         manager.onSaveBlocks,
		SavePeers:          manager.onSavePeers,
		NetworkIsReachable: func() bool { return true },
		ThreadCleanup:      func() {},
	})

	return manager
}

// GetBlockHeight returns the highest network block height observed.
func (psm *PeerSyncManager) GetBlockHeight() uint64 {
	psm.mtx.Lock()
	defer psm.mtx.Unlock()
	return psm.networkBlockHeight
}

// IsInFullScan reports whether a full sync is currently in progress.
func (psm *PeerSyncManager) IsInFullScan() bool {
	psm.mtx.Lock()
	defer psm.mtx.Unlock()
	return psm.fullScan
}

// Connect starts the peer manager; connectivity is reported back through
// the callbacks.
func (psm *PeerSyncManager) Connect() {
	psm.peerManager.Connect()
}

// Disconnect stops the peer manager.
func (psm *PeerSyncManager) Disconnect() {
	psm.peerManager.Disconnect()
}

// Scan restarts the sync from the earliest height of interest.
func (psm *PeerSyncManager) Scan() {
	psm.ScanToDepth(SyncDepthHigh)
}

// ScanToDepth rescans from the most recent confirmed send, the last
// hardcoded checkpoint or the earliest height of interest, per depth.
func (psm *PeerSyncManager) ScanToDepth(depth SyncDepth) {
	switch depth {
	case SyncDepthLow:
		scanHeight := lastConfirmedSendHeight(psm.wallet, psm.peerManager.LastBlockHeight())
		if scanHeight != 0 {
			psm.peerManager.RescanFromBlockNumber(scanHeight)
		} else {
			psm.peerManager.Rescan()
		}
	case SyncDepthMedium:
		psm.peerManager.RescanFromLastHardcodedCheckpoint()
	case SyncDepthHigh:
		psm.peerManager.Rescan()
	}
}

// Submit publishes a signed transaction to the P2P network. The published
// copy belongs to the peer manager; the caller's transaction is echoed in
// the completion event.
func (psm *PeerSyncManager) Submit(tx *wire.MsgTx) {
	publishTx := txhelper.CopyTx(tx)
	psm.peerManager.PublishTx(publishTx, func(err error) {
		errCode := int32(0)
		if err != nil {
			syncLog.Errorf("transaction publish failed: %v", err)
			errCode = TxnSubmitError
		}
		psm.listener.OnSyncEvent(&SyncEvent{
			Type:      SyncEventTxnSubmitted,
			Submitted: &TxnSubmittedPayload{Transaction: tx, Error: errCode},
		})
	})
}

// TickTock samples sync progress and, while a full scan is running, reports
// it. Only progress strictly inside (0, 100) is reported; the endpoints are
// carried by SyncStarted and SyncStopped.
func (psm *PeerSyncManager) TickTock() {
	progressPercent := 100 * psm.peerManager.SyncProgress(0)
	progressTimestamp := uint64(psm.peerManager.LastBlockTimestamp())

	if progressPercent <= 0 || progressPercent >= 100 {
		return
	}

	psm.mtx.Lock()
	// Deliver under the lock so that progress can not be observed after
	// a disconnect or sync stop.
	if psm.connected && psm.fullScan {
		psm.listener.OnSyncEvent(&SyncEvent{
			Type: SyncEventSyncProgress,
			SyncProgress: &SyncProgressPayload{
				Timestamp: progressTimestamp,
				Percent:   progressPercent,
			},
		})
	}
	psm.mtx.Unlock()
}

// onSyncStarted translates the peer manager's sync start:
//   - if not connected, the manager is now connected
//   - a full scan already running is stopped with an error first
//   - a sync start always indicates a full scan
func (psm *PeerSyncManager) onSyncStarted() {
	psm.mtx.Lock()
	needConnectionEvent := !psm.connected
	needSyncStoppedEvent := psm.fullScan

	psm.connected = true
	psm.fullScan = true

	syncLog.Debugf("sync started: needConnect=%v needStop=%v",
		needConnectionEvent, needSyncStoppedEvent)

	if needSyncStoppedEvent {
		psm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventSyncStopped,
			SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedError},
		})
	}
	if needConnectionEvent {
		psm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventConnected})
	}
	psm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventSyncStarted})
	psm.mtx.Unlock()
}

// onSyncStopped translates the peer manager's sync stop, which may mean the
// chain is caught up or that connectivity was lost; the peer manager's
// connect status disambiguates.
func (psm *PeerSyncManager) onSyncStopped(reason int32) {
	isConnected := psm.peerManager.ConnectStatus() != PeerStatusDisconnected

	psm.mtx.Lock()
	needSyncStoppedEvent := psm.fullScan
	needDisconnectionEvent := !isConnected && psm.connected

	psm.connected = isConnected
	if needSyncStoppedEvent {
		psm.fullScan = false
	}

	syncLog.Debugf("sync stopped: reason=%d needStop=%v needDisconnect=%v",
		reason, needSyncStoppedEvent, needDisconnectionEvent)

	if needSyncStoppedEvent {
		psm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventSyncStopped,
			SyncStopped: &SyncStoppedPayload{Reason: reason},
		})
	}
	if needDisconnectionEvent {
		psm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventDisconnected})
	}
	psm.mtx.Unlock()
}

// onTxStatusUpdate fires whenever transaction or peer state changed. The
// peer manager does not always deliver a sync stop on disconnect, so
// connectivity is re-checked here, and the current height is folded into the
// monotone network height.
func (psm *PeerSyncManager) onTxStatusUpdate() {
	isConnected := psm.peerManager.ConnectStatus() != PeerStatusDisconnected
	blockHeight := psm.peerManager.LastBlockHeight()

	psm.mtx.Lock()
	needSyncStoppedEvent := !isConnected && psm.connected && psm.fullScan
	needDisconnectionEvent := !isConnected && psm.connected
	needBlockHeightEvent := blockHeight > psm.networkBlockHeight

	if needDisconnectionEvent {
		psm.connected = false
	}
	if needSyncStoppedEvent {
		psm.fullScan = false
	}
	// Never move the height backwards; track the maximum observed.
	if blockHeight > psm.networkBlockHeight {
		psm.networkBlockHeight = blockHeight
	}

	if needBlockHeightEvent {
		psm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventBlockHeightUpdated,
			BlockHeight: &BlockHeightPayload{Height: blockHeight},
		})
	}
	if needSyncStoppedEvent {
		psm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventSyncStopped,
			SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedError},
		})
	}
	if needDisconnectionEvent {
		psm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventDisconnected})
	}
	psm.mtx.Unlock()

	psm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventTxnsUpdated})
}

func (psm *PeerSyncManager) onSaveBlocks(replace bool, blocks []*MerkleBlock) {
	eventType := SyncEventAddBlocks
	if replace {
		eventType = SyncEventSetBlocks
	}
	psm.listener.OnSyncEvent(&SyncEvent{
		Type:   eventType,
		Blocks: &BlocksPayload{Blocks: blocks},
	})
}

func (psm *PeerSyncManager) onSavePeers(replace bool, peers []Peer) {
	eventType := SyncEventAddPeers
	if replace {
		eventType = SyncEventSetPeers
	}
	psm.listener.OnSyncEvent(&SyncEvent{
		Type:  eventType,
		Peers: &PeersPayload{Peers: peers},
	})
}

// shutdown disconnects and releases the owned peer manager.
func (psm *PeerSyncManager) shutdown() {
	psm.peerManager.Disconnect()
}
