package btclibwallet

import (
	"path/filepath"

	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/walletdata"
)

// PersistentEventListener persists the network data a P2P backend asks to
// have saved (SetBlocks/AddBlocks/SetPeers/AddPeers) and forwards every
// event, persistence ones included, to the wrapped listener.
//
// The persistence events are delivered outside the manager's lock, so the
// database writes here do not stall event ordering.
type PersistentEventListener struct {
	db    *walletdata.DB
	inner SyncEventListener
}

// NewPersistentEventListener opens (creating if necessary) the wallet data
// database under rootDir and wraps inner with it. The returned listener owns
// the database; call Close when the sync manager is done.
func NewPersistentEventListener(rootDir string, inner SyncEventListener) (*PersistentEventListener, error) {
	db, err := walletdata.Initialize(filepath.Join(rootDir, walletdata.DbName))
	if err != nil {
		return nil, err
	}
	return &PersistentEventListener{db: db, inner: inner}, nil
}

// DB exposes the underlying store, e.g. to load persisted blocks and peers
// for a peer manager factory at startup.
func (pel *PersistentEventListener) DB() *walletdata.DB {
	return pel.db
}

// Close releases the underlying store.
func (pel *PersistentEventListener) Close() error {
	return pel.db.Close()
}

// OnSyncEvent implements SyncEventListener.
func (pel *PersistentEventListener) OnSyncEvent(event *SyncEvent) {
	switch event.Type {
	case SyncEventSetBlocks, SyncEventAddBlocks:
		pel.saveBlocks(event.Type == SyncEventSetBlocks, event.Blocks.Blocks)
	case SyncEventSetPeers, SyncEventAddPeers:
		pel.savePeers(event.Type == SyncEventSetPeers, event.Peers.Peers)
	}

	if pel.inner != nil {
		pel.inner.OnSyncEvent(event)
	}
}

func (pel *PersistentEventListener) saveBlocks(replace bool, blocks []*MerkleBlock) {
	msgs := make([]*wire.MsgMerkleBlock, len(blocks))
	heights := make([]uint64, len(blocks))
	for i, block := range blocks {
		msgs[i] = block.MsgMerkleBlock
		heights[i] = block.Height
	}

	if err := pel.db.SaveBlocks(replace, msgs, heights); err != nil {
		log.Errorf("error persisting blocks: %v", err)
	}
}

func (pel *PersistentEventListener) savePeers(replace bool, peers []Peer) {
	records := make([]walletdata.PeerRecord, len(peers))
	for i, peer := range peers {
		records[i] = walletdata.PeerRecord{
			Address:   peer.String(),
			Services:  peer.Services,
			Timestamp: peer.Timestamp,
		}
	}

	if err := pel.db.SavePeers(replace, records); err != nil {
		log.Errorf("error persisting peers: %v", err)
	}
}
