package btclibwallet

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/hashforge/btclibwallet/txhelper"
)

const (
	// ConfirmationBlockCount is how deep a transaction must be buried
	// before it is treated as irreversibly confirmed.
	ConfirmationBlockCount = 6

	// SequenceGapLimitExternal and SequenceGapLimitInternal are the
	// maximum number of consecutive unused addresses derived ahead on the
	// receive and change chains respectively.
	SequenceGapLimitExternal uint32 = 10
	SequenceGapLimitInternal uint32 = 5
)

// Wallet is the transaction book a sync manager reconciles against the
// network. The manager borrows the wallet; it never owns it. Implementations
// must be safe for concurrent use, as announcements arrive from collaborator
// threads.
type Wallet interface {
	// AllAddresses returns every address the wallet has derived so far,
	// in canonical encoded form.
	AllAddresses() []string

	// UnusedAddresses extends derivation on the external or internal
	// chain until `limit` consecutive unused addresses exist past the
	// last used one, and returns them in derivation order.
	UnusedAddresses(limit uint32, internal bool) []string

	// AddressToLegacy returns the legacy encoding of an address, or the
	// address itself when the two coincide. Indexer queries carry both
	// forms.
	AddressToLegacy(address string) string

	// TransactionForHash returns the wallet's record for the hash, or nil.
	TransactionForHash(hash *chainhash.Hash) *txhelper.TxRecord

	// RegisterTransaction adds a record to the wallet. Registration is
	// idempotent; the wallet remains authoritative about whether the
	// transaction is relevant to it.
	RegisterTransaction(rec *txhelper.TxRecord)

	// UpdateTransaction sets the block info of an already known
	// transaction.
	UpdateTransaction(hash *chainhash.Hash, blockHeight, timestamp uint64)

	// Transactions returns all records currently in the wallet.
	Transactions() []*txhelper.TxRecord

	// AmountSentByTx returns the total of the wallet's own outputs spent
	// by the transaction; zero for pure receives.
	AmountSentByTx(rec *txhelper.TxRecord) int64

	// TransactionIsValid reports whether no input of the transaction is
	// known to be invalid or already spent elsewhere.
	TransactionIsValid(rec *txhelper.TxRecord) bool
}

// lastConfirmedSendHeight returns the height of the most recent confirmed
// send in the wallet, or 0 when the wallet has never sent. A send must be
// more than ConfirmationBlockCount blocks below lastBlockHeight to count; a
// shallow-depth rescan starts from the returned height.
func lastConfirmedSendHeight(w Wallet, lastBlockHeight uint64) uint64 {
	var scanHeight uint64

	if lastBlockHeight < ConfirmationBlockCount {
		return 0
	}

	for _, rec := range w.Transactions() {
		if w.TransactionIsValid(rec) &&
			w.AmountSentByTx(rec) != 0 &&
			rec.Confirmed() &&
			rec.BlockHeight < lastBlockHeight-ConfirmationBlockCount {
			if rec.BlockHeight > scanHeight {
				scanHeight = rec.BlockHeight
			}
		}
	}

	return scanHeight
}
