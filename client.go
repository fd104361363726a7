package btclibwallet

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/hashforge/btclibwallet/indexer"
)

// SyncClient is the indexing service an API-mode sync manager drives. Calls
// are made outside the manager's lock and must return promptly; the client
// performs its work on its own threads and reports back through the
// manager's Announce methods, quoting the request id it was given.
//
// Freshly allocated request ids are strictly increasing over the life of a
// manager; a gap-limit re-query of GetTransactions reuses the id of the scan
// it extends. Transaction items and completions quoting anything other than
// the in-flight scan's request id are dropped silently. Block height and
// submission responses are not matched against a request id.
type SyncClient interface {
	// GetBlockNumber asks for the current network block height, to be
	// announced via AnnounceGetBlockNumber.
	GetBlockNumber(rid int32)

	// GetTransactions asks for all transactions paying to or from the
	// given addresses within [begBlockNumber, endBlockNumber). Each found
	// transaction is announced via AnnounceGetTransactionsItem, followed
	// by a single AnnounceGetTransactionsDone.
	GetTransactions(addresses []string, begBlockNumber, endBlockNumber uint64, rid int32)

	// SubmitTransaction broadcasts a serialized transaction, reporting
	// the outcome via AnnounceSubmitTransaction.
	SubmitTransaction(serializedTx []byte, txHash chainhash.Hash, rid int32)
}

// The HTTP indexer client is a SyncClient, and a sync manager is the
// announcer it reports back to.
var (
	_ SyncClient        = (*indexer.Service)(nil)
	_ indexer.Announcer = (*SyncManager)(nil)
)

// NewIndexerClient builds a SyncClient backed by the HTTP indexing service
// at baseUrl. Bind the sync manager with BindAnnouncer before connecting:
//
//	client := btclibwallet.NewIndexerClient(url, userAgent)
//	manager, _ := btclibwallet.NewSyncManager(btclibwallet.SyncModeAPI, &btclibwallet.SyncManagerConfig{
//		... ,
//		Client: client,
//	})
//	client.BindAnnouncer(manager)
func NewIndexerClient(baseUrl, userAgent string) *indexer.Service {
	return indexer.NewService(&indexer.ClientConf{
		BaseUrl:   baseUrl,
		UserAgent: userAgent,
	})
}
