package btclibwallet

import (
	"errors"

	"github.com/btcsuite/btcd/wire"
)

// SyncMode selects how a wallet is reconciled with the network.
type SyncMode int

const (
	// SyncModeAPI discovers transactions by polling an external indexing
	// service.
	SyncModeAPI SyncMode = iota

	// SyncModeP2P delegates discovery to a peer-to-peer network backend.
	SyncModeP2P
)

// SyncDepth selects how far back a rescan goes.
type SyncDepth int

const (
	// SyncDepthLow rescans from the height of the most recent confirmed
	// send.
	SyncDepthLow SyncDepth = iota

	// SyncDepthMedium rescans from the previous hardcoded checkpoint.
	SyncDepthMedium

	// SyncDepthHigh rescans from the earliest height of interest.
	SyncDepthHigh
)

// SyncManagerConfig carries everything needed to build a sync manager for
// either mode. ChainParams, Wallet, EarliestKeyTime, BlockHeight and
// Listener are always required. API mode additionally requires Client. P2P
// mode requires either an explicit PeerManager (ownership passes to the
// manager) or a registered chain whose factory can build one from Blocks
// and Peers.
type SyncManagerConfig struct {
	ChainParams     *ChainParams
	Wallet          Wallet
	EarliestKeyTime int64
	BlockHeight     uint64
	Listener        SyncEventListener

	// API mode.
	Client SyncClient

	// P2P mode.
	PeerManager PeerManager
	Blocks      []*MerkleBlock
	Peers       []Peer
}

// SyncManager is the mode-polymorphic facade over the two concrete sync
// managers. The mode is fixed at construction; exactly one arm is ever
// non-nil and the manager owns it exclusively.
type SyncManager struct {
	mode   SyncMode
	client *ClientSyncManager
	peer   *PeerSyncManager
}

// NewSyncManager builds a sync manager operating in the given mode.
func NewSyncManager(mode SyncMode, config *SyncManagerConfig) (*SyncManager, error) {
	if config == nil || config.ChainParams == nil || config.Wallet == nil || config.Listener == nil {
		return nil, errors.New(ErrFailedPrecondition)
	}

	switch mode {
	case SyncModeAPI:
		if config.Client == nil {
			return nil, errors.New(ErrFailedPrecondition)
		}
		return &SyncManager{
			mode: mode,
			client: NewClientSyncManager(config.ChainParams, config.Wallet,
				config.Listener, config.Client, config.EarliestKeyTime, config.BlockHeight),
		}, nil

	case SyncModeP2P:
		peerManager := config.PeerManager
		if peerManager == nil {
			handlers := ChainHandlersForNet(config.ChainParams.Name)
			if handlers == nil || handlers.NewPeerManager == nil {
				return nil, errors.New(ErrFailedPrecondition)
			}
			var err error
			peerManager, err = handlers.NewPeerManager(config.ChainParams, config.Wallet,
				config.EarliestKeyTime, config.Blocks, config.Peers)
			if err != nil {
				return nil, err
			}
		}
		return &SyncManager{
			mode: mode,
			peer: NewPeerSyncManager(config.ChainParams, config.Wallet,
				config.Listener, peerManager, config.EarliestKeyTime, config.BlockHeight),
		}, nil

	default:
		return nil, errors.New(ErrUnsupportedMode)
	}
}

// Mode returns the manager's immutable sync mode.
func (sm *SyncManager) Mode() SyncMode {
	return sm.mode
}

// asClient returns the API arm; calling it on a P2P manager is a
// programming fault.
func (sm *SyncManager) asClient() *ClientSyncManager {
	if sm.mode != SyncModeAPI {
		panic("btclibwallet: sync manager is not in API mode")
	}
	return sm.client
}

// asPeer returns the P2P arm; calling it on an API manager is a programming
// fault.
func (sm *SyncManager) asPeer() *PeerSyncManager {
	if sm.mode != SyncModeP2P {
		panic("btclibwallet: sync manager is not in P2P mode")
	}
	return sm.peer
}

// Shutdown releases the manager's resources: the API arm's scan state or
// the P2P arm's owned peer manager. The wallet and chain params stay with
// the owner.
func (sm *SyncManager) Shutdown() {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().shutdown()
	case SyncModeP2P:
		sm.asPeer().shutdown()
	}
}

// GetBlockHeight returns the highest network block height observed.
func (sm *SyncManager) GetBlockHeight() uint64 {
	switch sm.mode {
	case SyncModeAPI:
		return sm.asClient().GetBlockHeight()
	default:
		return sm.asPeer().GetBlockHeight()
	}
}

// Connect begins syncing.
func (sm *SyncManager) Connect() {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().Connect()
	default:
		sm.asPeer().Connect()
	}
}

// Disconnect stops syncing, cancelling any scan in progress.
func (sm *SyncManager) Disconnect() {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().Disconnect()
	default:
		sm.asPeer().Disconnect()
	}
}

// Scan restarts the sync from the earliest height of interest.
func (sm *SyncManager) Scan() {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().Scan()
	default:
		sm.asPeer().Scan()
	}
}

// ScanToDepth restarts the sync from the height selected by depth.
func (sm *SyncManager) ScanToDepth(depth SyncDepth) {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().ScanToDepth(depth)
	default:
		sm.asPeer().ScanToDepth(depth)
	}
}

// Submit broadcasts a signed transaction through the active backend. The
// transaction remains caller-owned.
func (sm *SyncManager) Submit(tx *wire.MsgTx) {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().Submit(tx)
	default:
		sm.asPeer().Submit(tx)
	}
}

// TickTock lets an external timer drive periodic progress.
func (sm *SyncManager) TickTock() {
	switch sm.mode {
	case SyncModeAPI:
		sm.asClient().TickTock()
	default:
		sm.asPeer().TickTock()
	}
}

// P2PFullScanReport samples and reports sync progress if a P2P full scan is
// running; otherwise it does nothing.
func (sm *SyncManager) P2PFullScanReport() {
	if sm.mode == SyncModeP2P && sm.asPeer().IsInFullScan() {
		sm.asPeer().TickTock()
	}
}

// AnnounceGetBlockNumber forwards a block height response in API mode. In
// P2P mode the call is ignored; it can occur legally when the owner changed
// modes while a response was in flight.
func (sm *SyncManager) AnnounceGetBlockNumber(rid int32, blockHeight uint64) {
	if sm.mode == SyncModeAPI {
		sm.asClient().AnnounceGetBlockNumber(rid, blockHeight)
	}
}

// AnnounceGetTransactionsItem forwards a found transaction in API mode; see
// AnnounceGetBlockNumber for the P2P behaviour.
func (sm *SyncManager) AnnounceGetTransactionsItem(rid int32, serializedTx []byte, timestamp, blockHeight uint64) {
	if sm.mode == SyncModeAPI {
		sm.asClient().AnnounceGetTransactionsItem(rid, serializedTx, timestamp, blockHeight)
	}
}

// AnnounceGetTransactionsDone forwards a range query completion in API
// mode; see AnnounceGetBlockNumber for the P2P behaviour.
func (sm *SyncManager) AnnounceGetTransactionsDone(rid int32, success bool) {
	if sm.mode == SyncModeAPI {
		sm.asClient().AnnounceGetTransactionsDone(rid, success)
	}
}

// AnnounceSubmitTransaction forwards a submission outcome in API mode; see
// AnnounceGetBlockNumber for the P2P behaviour.
func (sm *SyncManager) AnnounceSubmitTransaction(rid int32, tx *wire.MsgTx, errCode int32) {
	if sm.mode == SyncModeAPI {
		sm.asClient().AnnounceSubmitTransaction(rid, tx, errCode)
	}
}
