package btclibwallet

import (
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/txhelper"
)

// When syncing through an indexing service, offset the start block by N days
// of bitcoin blocks; N is assumed to be the maximum number of days the
// service's view could be behind the network.
const (
	MinutesPerBlock      = 10 // assumed, bitcoin
	SyncDaysOffset       = 1
	SyncStartBlockOffset = (SyncDaysOffset * 24 * 60) / MinutesPerBlock

	OneWeekInSeconds = 7 * 24 * 60 * 60
)

// ClientSyncManager reconciles a wallet against the chain by polling an
// external indexing service. Transaction discovery is driven by the wallet's
// gap limits: a completed range query that surfaced activity on a
// previously-unused address re-queries the same range with the newly derived
// addresses until the first-unused addresses stabilize.
//
// All mutable state is guarded by mtx. State-transition events are delivered
// to the listener while mtx is held; client calls are always made outside it.
type ClientSyncManager struct {
	mtx sync.Mutex

	// Wallet being synced; borrowed from the owner.
	wallet Wallet

	chainParams *ChainParams
	listener    SyncEventListener
	client      SyncClient

	// Height of the earliest block of interest, fixed at construction
	// from the account's earliest key time.
	initBlockHeight uint64

	// Known height of the blockchain as reported by the network. Only
	// ever advances.
	networkBlockHeight uint64

	// Height synced through so far. Starts at initBlockHeight, moves
	// forward as ranges complete and is reset downward by a rescan.
	syncedBlockHeight uint64

	connected bool

	requestIDCounter int32

	scanState scanState
}

// NewClientSyncManager creates an API-mode sync manager. The wallet and
// chain params are borrowed; the listener and client are retained for the
// manager's lifetime.
func NewClientSyncManager(chainParams *ChainParams, w Wallet, listener SyncEventListener,
	client SyncClient, earliestKeyTime int64, blockHeight uint64) *ClientSyncManager {

	// Anchor the initial height at the checkpoint at least one week
	// before the earliest key time, so that clock skew between the
	// account birth and the checkpoint table cannot skip blocks.
	var checkpointHeight uint64
	if checkpoint := chainParams.CheckpointBefore(earliestKeyTime - OneWeekInSeconds); checkpoint != nil {
		checkpointHeight = checkpoint.Height
	}

	// Start from the best height available and expect it to change; the
	// first updateBlockNumber round-trip corrects it. The initial sync
	// covers [initBlockHeight, networkBlockHeight] in full regardless of
	// any prior partial coverage, since the service's data is untrusted.
	manager := &ClientSyncManager{
		wallet:             w,
		chainParams:        chainParams,
		listener:           listener,
		client:             client,
		initBlockHeight:    checkpointHeight,
		networkBlockHeight: checkpointHeight,
	}
	if blockHeight < manager.initBlockHeight {
		manager.initBlockHeight = blockHeight
	}
	if blockHeight > manager.networkBlockHeight {
		manager.networkBlockHeight = blockHeight
	}
	manager.syncedBlockHeight = manager.initBlockHeight

	return manager
}

// GetBlockHeight returns the highest network block height observed.
func (csm *ClientSyncManager) GetBlockHeight() uint64 {
	csm.mtx.Lock()
	defer csm.mtx.Unlock()
	return csm.networkBlockHeight
}

// IsInFullScan reports whether a full scan is currently in progress.
func (csm *ClientSyncManager) IsInFullScan() bool {
	csm.mtx.Lock()
	defer csm.mtx.Unlock()
	return csm.scanState.isFullScan
}

// Connect marks the manager connected and kicks off a block height refresh
// and a transaction scan. Connecting while connected is a no-op.
func (csm *ClientSyncManager) Connect() {
	csm.mtx.Lock()
	needEvent := !csm.connected
	csm.connected = true

	// Deliver the event while holding the state lock so that event
	// delivery is ordered to reflect state transitions.
	if needEvent {
		csm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventConnected})
	}
	csm.mtx.Unlock()

	if needEvent {
		csm.updateBlockNumber()
		csm.updateTransactions()
	}
}

// Disconnect clears the connection and cancels any in-progress scan. A full
// scan cancelled this way reports SyncStopped with an error reason before
// the Disconnected event.
func (csm *ClientSyncManager) Disconnect() {
	csm.mtx.Lock()
	var needConnectionEvent, needSyncEvent bool
	if csm.connected {
		csm.connected = false
		needConnectionEvent = true
		// Wipe the scan state so a fresh scan starts on reconnect.
		needSyncEvent = csm.scanState.isFullScan
		csm.scanState.wipe()
	}

	if needSyncEvent {
		csm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventSyncStopped,
			SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedError},
		})
	}
	if needConnectionEvent {
		csm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventDisconnected})
	}
	csm.mtx.Unlock()
}

// Scan restarts the sync from the initial block height.
func (csm *ClientSyncManager) Scan() {
	csm.ScanToDepth(SyncDepthHigh)
}

// ScanToDepth resets the synced height according to depth and restarts the
// sync from there. Mirroring the P2P backend's rescan, this only has an
// effect while connected; the forced Disconnected/Connected pair tells the
// listener the previous coverage is void.
func (csm *ClientSyncManager) ScanToDepth(depth SyncDepth) {
	csm.mtx.Lock()
	var needConnectionEvent, needSyncEvent bool
	if csm.connected {
		needConnectionEvent = true
		needSyncEvent = csm.scanState.isFullScan
		csm.scanState.wipe()

		switch depth {
		case SyncDepthLow:
			scanHeight := lastConfirmedSendHeight(csm.wallet, csm.networkBlockHeight)
			if scanHeight == 0 {
				scanHeight = csm.initBlockHeight
			}
			csm.syncedBlockHeight = scanHeight
		case SyncDepthMedium:
			checkpoint := csm.chainParams.CheckpointBeforeBlockNumber(csm.networkBlockHeight)
			if checkpoint == nil {
				csm.syncedBlockHeight = csm.initBlockHeight
			} else {
				csm.syncedBlockHeight = checkpoint.Height
			}
		case SyncDepthHigh:
			csm.syncedBlockHeight = csm.initBlockHeight
		}
	}

	if needSyncEvent {
		csm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventSyncStopped,
			SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedError},
		})
	}
	if needConnectionEvent {
		csm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventDisconnected})
		csm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventConnected})
	}
	csm.mtx.Unlock()

	csm.updateBlockNumber()
	csm.updateTransactions()
}

// Submit hands a signed transaction to the indexing service. While
// disconnected the submission fails immediately with a synthesized
// TxnSubmitted event. The transaction remains caller-owned.
func (csm *ClientSyncManager) Submit(tx *wire.MsgTx) {
	csm.mtx.Lock()
	needClientCall := csm.connected
	var rid int32
	if needClientCall {
		rid = csm.generateRequestID()
	}
	csm.mtx.Unlock()

	// TxnSubmitted does not describe a state transition, so it is
	// delivered outside the lock.
	if !needClientCall {
		csm.listener.OnSyncEvent(&SyncEvent{
			Type:      SyncEventTxnSubmitted,
			Submitted: &TxnSubmittedPayload{Transaction: tx, Error: TxnSubmitError},
		})
		return
	}

	serializedTx, err := txhelper.SerializeTx(tx)
	if err != nil {
		syncLog.Errorf("unable to serialize transaction for submission: %v", err)
		csm.listener.OnSyncEvent(&SyncEvent{
			Type:      SyncEventTxnSubmitted,
			Submitted: &TxnSubmittedPayload{Transaction: tx, Error: TxnSubmitError},
		})
		return
	}

	csm.client.SubmitTransaction(serializedTx, tx.TxHash(), rid)
}

// TickTock lets an external timer drive progress: it refreshes the network
// block height and starts a scan if none is running.
func (csm *ClientSyncManager) TickTock() {
	csm.updateBlockNumber()
	csm.updateTransactions()
}

// AnnounceGetBlockNumber reports the result of a GetBlockNumber client call.
// Heights that do not advance the known maximum are ignored, as are
// announcements arriving while disconnected.
func (csm *ClientSyncManager) AnnounceGetBlockNumber(rid int32, blockHeight uint64) {
	csm.mtx.Lock()
	needEvent := blockHeight > csm.networkBlockHeight && csm.connected
	if needEvent {
		csm.networkBlockHeight = blockHeight
	}

	// Deliver while holding the lock so that a height update can not be
	// observed after a disconnect.
	if needEvent {
		csm.listener.OnSyncEvent(&SyncEvent{
			Type:        SyncEventBlockHeightUpdated,
			BlockHeight: &BlockHeightPayload{Height: blockHeight},
		})
	}
	csm.mtx.Unlock()
}

// AnnounceGetTransactionsItem reports one transaction found by an in-flight
// GetTransactions call. Items quoting a stale request id, arriving while
// disconnected or carrying an unsigned or unparsable transaction are dropped.
func (csm *ClientSyncManager) AnnounceGetTransactionsItem(rid int32, serializedTx []byte, timestamp, blockHeight uint64) {
	tx, err := txhelper.ParseTx(serializedTx)
	needRegistration := err == nil && txhelper.IsSigned(tx)
	if needRegistration {
		csm.mtx.Lock()
		needRegistration = rid == csm.scanState.requestID && csm.connected
		csm.mtx.Unlock()
	}
	if !needRegistration {
		return
	}

	hash := tx.TxHash()
	if csm.wallet.TransactionForHash(&hash) != nil {
		// Already known; just refresh the block info.
		csm.wallet.UpdateTransaction(&hash, blockHeight, timestamp)
	} else {
		csm.wallet.RegisterTransaction(txhelper.NewTxRecord(tx, blockHeight, timestamp))
	}
}

// AnnounceGetTransactionsDone reports completion of an in-flight
// GetTransactions call. On success the gap-limit window is re-examined: if
// transaction registration moved either first-unused address, the same range
// is immediately re-queried with the newly derived addresses under the same
// request id; otherwise the range is recorded as synced. Stale completions
// are dropped.
func (csm *ClientSyncManager) AnnounceGetTransactionsDone(rid int32, success bool) {
	var (
		needSyncEvent  bool
		needClientCall bool
		begBlockNumber uint64
		endBlockNumber uint64
		addresses      []string
		syncEvent      *SyncEvent
	)

	csm.mtx.Lock()
	if rid == csm.scanState.requestID && csm.connected {
		switch {
		case success:
			addresses = csm.scanState.advanceAndGetNewAddresses(csm.wallet)
			if len(addresses) != 0 {
				// Activity landed on a previously-unused address;
				// repeat the window with the new addresses.
				begBlockNumber = csm.scanState.begBlockNumber
				endBlockNumber = csm.scanState.endBlockNumber
				needClientCall = true
			} else {
				// The address set stabilized; the range is done.
				csm.syncedBlockHeight = csm.scanState.endBlockNumber - 1
				needSyncEvent = csm.scanState.isFullScan
				syncEvent = &SyncEvent{
					Type:        SyncEventSyncStopped,
					SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedSuccess},
				}
				csm.scanState.wipe()
			}
		default:
			needSyncEvent = csm.scanState.isFullScan
			syncEvent = &SyncEvent{
				Type:        SyncEventSyncStopped,
				SyncStopped: &SyncStoppedPayload{Reason: SyncStoppedError},
			}
			csm.scanState.wipe()
		}
	}

	if needSyncEvent {
		csm.listener.OnSyncEvent(syncEvent)
	}
	csm.mtx.Unlock()

	if needClientCall {
		csm.client.GetTransactions(addresses, begBlockNumber, endBlockNumber, rid)
	}
}

// AnnounceSubmitTransaction reports the outcome of a SubmitTransaction
// client call. A successfully broadcast transaction the wallet does not know
// yet is registered so it shows up as pending immediately.
func (csm *ClientSyncManager) AnnounceSubmitTransaction(rid int32, tx *wire.MsgTx, errCode int32) {
	hash := tx.TxHash()
	if errCode == 0 && csm.wallet.TransactionForHash(&hash) == nil {
		csm.wallet.RegisterTransaction(txhelper.NewTxRecord(
			txhelper.CopyTx(tx), txhelper.UnconfirmedBlockHeight, 0))
	}

	csm.listener.OnSyncEvent(&SyncEvent{
		Type:      SyncEventTxnSubmitted,
		Submitted: &TxnSubmittedPayload{Transaction: tx, Error: errCode},
	})
}

// updateBlockNumber asks the client for the current network height.
func (csm *ClientSyncManager) updateBlockNumber() {
	csm.mtx.Lock()
	needClientCall := csm.connected
	var rid int32
	if needClientCall {
		rid = csm.generateRequestID()
	}
	csm.mtx.Unlock()

	if needClientCall {
		csm.client.GetBlockNumber(rid)
	}
}

// updateTransactions starts a new range query when connected and idle. The
// window runs from the synced height (less the start block offset buffer) up
// to and including the network height; a window wider than the offset is a
// full scan and brackets itself with SyncStarted/SyncStopped events.
func (csm *ClientSyncManager) updateTransactions() {
	var (
		rid            int32
		needSyncEvent  bool
		needClientCall bool
		begBlockNumber uint64
		endBlockNumber uint64
		addresses      []string
	)

	csm.mtx.Lock()
	if !csm.scanState.inProgress() && csm.connected {
		csm.scanState.init(csm.wallet, csm.syncedBlockHeight, csm.networkBlockHeight,
			csm.generateRequestID())

		addresses = csm.scanState.addresses()
		rid = csm.scanState.requestID
		begBlockNumber = csm.scanState.begBlockNumber
		endBlockNumber = csm.scanState.endBlockNumber

		needSyncEvent = csm.scanState.isFullScan
		needClientCall = true
	}

	if needSyncEvent {
		csm.listener.OnSyncEvent(&SyncEvent{Type: SyncEventSyncStarted})
	}
	csm.mtx.Unlock()

	if needClientCall {
		csm.client.GetTransactions(addresses, begBlockNumber, endBlockNumber, rid)
	}
}

// generateRequestID must be called with mtx held.
func (csm *ClientSyncManager) generateRequestID() int32 {
	csm.requestIDCounter++
	return csm.requestIDCounter
}

// shutdown releases the scan state. The wallet and chain params are
// borrowed and stay with the owner.
func (csm *ClientSyncManager) shutdown() {
	csm.mtx.Lock()
	csm.scanState.wipe()
	csm.mtx.Unlock()
}
