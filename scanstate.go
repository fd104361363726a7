package btclibwallet

import (
	"sort"
)

// scanState tracks one in-flight getTransactions range query in an API-mode
// manager. A zero requestId means no scan is in progress. The state advances
// Idle -> Requesting -> Awaiting and, on completion, either extends (the
// gap-limit window moved, so the same range is re-queried with the newly
// derived addresses), finishes, or fails; every terminal wipes back to Idle.
type scanState struct {
	requestID int32

	// First unused external/internal addresses at the last completion
	// checkpoint; a change signals gap-limit expansion.
	lastExternalAddress string
	lastInternalAddress string

	// Addresses already sent to the client this scan, canonical encoded
	// forms only. Native and legacy encodings are distinct entries.
	knownAddresses map[string]struct{}

	// Half-open window [begBlockNumber, endBlockNumber).
	begBlockNumber uint64
	endBlockNumber uint64

	isFullScan bool
}

// init starts a new scan over the range implied by the synced and network
// heights, snapshots the wallet's address set and marks the scan full if the
// window is wider than the start block offset.
func (ss *scanState) init(w Wallet, syncedBlockHeight, networkBlockHeight uint64, rid int32) {
	// The end is exclusive, so go one past the current height to cover
	// the last block.
	ss.endBlockNumber = syncedBlockHeight + 1
	if networkBlockHeight >= syncedBlockHeight {
		ss.endBlockNumber = networkBlockHeight + 1
	}

	// Back the start off by the offset regardless, in case the indexing
	// service is lagging the network.
	ss.begBlockNumber = syncedBlockHeight
	if ss.endBlockNumber >= SyncStartBlockOffset {
		if buffered := ss.endBlockNumber - SyncStartBlockOffset; buffered < ss.begBlockNumber {
			ss.begBlockNumber = buffered
		}
	} else {
		ss.begBlockNumber = 0
	}

	// Roll derivation forward to the gap limits before snapshotting.
	w.UnusedAddresses(SequenceGapLimitExternal, false)
	w.UnusedAddresses(SequenceGapLimitInternal, true)

	ss.lastExternalAddress = firstUnusedAddress(w, false)
	ss.lastInternalAddress = firstUnusedAddress(w, true)

	ss.requestID = rid
	ss.isFullScan = (ss.endBlockNumber - ss.begBlockNumber) > SyncStartBlockOffset

	ss.knownAddresses = make(map[string]struct{}, SequenceGapLimitExternal+SequenceGapLimitInternal)
	fillAddressSet(ss.knownAddresses, w)
}

// wipe resets to Idle.
func (ss *scanState) wipe() {
	*ss = scanState{}
}

func (ss *scanState) inProgress() bool {
	return ss.requestID != 0
}

// addresses returns the full known-address set in a stable order.
func (ss *scanState) addresses() []string {
	addresses := make([]string, 0, len(ss.knownAddresses))
	for address := range ss.knownAddresses {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

// advanceAndGetNewAddresses re-derives up to the gap limits and checks
// whether the first unused addresses moved since the last completion. If so,
// the captured pair advances and the addresses not yet sent to the client
// are returned; the same window must then be re-queried with them. A nil
// return means the address set has stabilized.
func (ss *scanState) advanceAndGetNewAddresses(w Wallet) []string {
	w.UnusedAddresses(SequenceGapLimitExternal, false)
	w.UnusedAddresses(SequenceGapLimitInternal, true)

	externalAddress := firstUnusedAddress(w, false)
	internalAddress := firstUnusedAddress(w, true)

	if externalAddress == ss.lastExternalAddress && internalAddress == ss.lastInternalAddress {
		return nil
	}

	ss.lastExternalAddress = externalAddress
	ss.lastInternalAddress = internalAddress

	return updateAddressSet(ss.knownAddresses, w)
}

func firstUnusedAddress(w Wallet, internal bool) string {
	addresses := w.UnusedAddresses(1, internal)
	if len(addresses) == 0 {
		return ""
	}
	return addresses[0]
}

// walletAddresses returns the wallet's addresses in both native and legacy
// encodings. The indexer treats the two forms as independent entries.
func walletAddresses(w Wallet) []string {
	native := w.AllAddresses()
	addresses := make([]string, 0, 2*len(native))
	addresses = append(addresses, native...)
	for _, address := range native {
		addresses = append(addresses, w.AddressToLegacy(address))
	}
	return addresses
}

func fillAddressSet(set map[string]struct{}, w Wallet) {
	for _, address := range walletAddresses(w) {
		set[address] = struct{}{}
	}
}

// updateAddressSet folds the wallet's current addresses into the set and
// returns the ones that were not already present, sorted.
func updateAddressSet(set map[string]struct{}, w Wallet) []string {
	var newAddresses []string
	for _, address := range walletAddresses(w) {
		if _, ok := set[address]; !ok {
			set[address] = struct{}{}
			newAddresses = append(newAddresses, address)
		}
	}
	sort.Strings(newAddresses)
	return newAddresses
}
