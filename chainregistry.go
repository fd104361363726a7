package btclibwallet

import (
	"errors"
	"sync"
)

// PeerManagerFactory builds the P2P backend for a chain, seeded with the
// blocks and peers persisted from earlier sessions.
type PeerManagerFactory func(chainParams *ChainParams, w Wallet, earliestKeyTime int64,
	blocks []*MerkleBlock, peers []Peer) (PeerManager, error)

// SyncClientFactory builds the indexing-service client for a chain.
type SyncClientFactory func(chainParams *ChainParams) (SyncClient, error)

// ChainHandlers bundles everything the sync core needs to know about one
// supported network: its parameters and how to construct the two network
// backends. The sync managers consume only these interfaces; chain-specific
// behaviour lives behind them.
type ChainHandlers struct {
	Params         *ChainParams
	NewPeerManager PeerManagerFactory
	NewSyncClient  SyncClientFactory
}

var (
	registryMtx   sync.RWMutex
	chainRegistry = make(map[string]*ChainHandlers)
)

// RegisterChain makes a network available to NewSyncManager under its
// params name. Registering the same network twice is an error.
func RegisterChain(handlers *ChainHandlers) error {
	if handlers == nil || handlers.Params == nil {
		return errors.New(ErrFailedPrecondition)
	}

	registryMtx.Lock()
	defer registryMtx.Unlock()

	netName := handlers.Params.Name
	if _, ok := chainRegistry[netName]; ok {
		return errors.New(ErrExist)
	}
	chainRegistry[netName] = handlers
	return nil
}

// ChainHandlersForNet returns the handlers registered for the network, or
// nil if the network is unknown.
func ChainHandlersForNet(netName string) *ChainHandlers {
	registryMtx.RLock()
	defer registryMtx.RUnlock()
	return chainRegistry[netName]
}

// SupportedChains lists the registered network names.
func SupportedChains() []string {
	registryMtx.RLock()
	defer registryMtx.RUnlock()

	chains := make([]string, 0, len(chainRegistry))
	for netName := range chainRegistry {
		chains = append(chains, netName)
	}
	return chains
}
