package btclibwallet

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/txhelper"
)

// testRegistryNetParams is a copy of the testnet params under a private name
// so registry tests do not collide with other tests.
var testRegistryNetParams = func() chaincfg.Params {
	params := chaincfg.TestNet3Params
	params.Name = "testnet3-registry"
	return params
}()

// testChainParams returns the testnet3 parameters with the checkpoint table
// replaced by the given checkpoints, which may be none.
func testChainParams(checkpoints ...Checkpoint) *ChainParams {
	params := TestNet3Params()
	params.Checkpoints = checkpoints
	return params
}

// eventRecorder collects the event stream for later assertions.
type eventRecorder struct {
	mtx    sync.Mutex
	events []*SyncEvent
}

func (r *eventRecorder) OnSyncEvent(event *SyncEvent) {
	r.mtx.Lock()
	r.events = append(r.events, event)
	r.mtx.Unlock()
}

func (r *eventRecorder) all() []*SyncEvent {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]*SyncEvent(nil), r.events...)
}

func (r *eventRecorder) types() []SyncEventType {
	events := r.all()
	types := make([]SyncEventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}

func (r *eventRecorder) countOf(eventType SyncEventType) int {
	count := 0
	for _, event := range r.all() {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

func (r *eventRecorder) reset() {
	r.mtx.Lock()
	r.events = nil
	r.mtx.Unlock()
}

// testWallet is an in-memory wallet with synthetic addresses. Gap-limit
// derivation appends addresses named after their chain and index; marking an
// address used moves the first-unused window forward, which is what drives
// scan extension.
type testWallet struct {
	mtx sync.Mutex

	external []string
	internal []string
	used     map[string]bool

	txns    map[chainhash.Hash]*txhelper.TxRecord
	txOrder []chainhash.Hash

	// payments maps a tx hash to the addresses the test wants marked
	// used when that transaction is registered.
	payments map[chainhash.Hash][]string

	// amountSent and invalid configure the per-tx predicates.
	amountSent map[chainhash.Hash]int64
	invalid    map[chainhash.Hash]bool
}

func newTestWallet() *testWallet {
	return &testWallet{
		used:       make(map[string]bool),
		txns:       make(map[chainhash.Hash]*txhelper.TxRecord),
		payments:   make(map[chainhash.Hash][]string),
		amountSent: make(map[chainhash.Hash]int64),
		invalid:    make(map[chainhash.Hash]bool),
	}
}

func (w *testWallet) chain(internal bool) *[]string {
	if internal {
		return &w.internal
	}
	return &w.external
}

func (w *testWallet) chainName(internal bool) string {
	if internal {
		return "int"
	}
	return "ext"
}

func (w *testWallet) AllAddresses() []string {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	all := make([]string, 0, len(w.external)+len(w.internal))
	all = append(all, w.external...)
	all = append(all, w.internal...)
	return all
}

func (w *testWallet) UnusedAddresses(limit uint32, internal bool) []string {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	chain := w.chain(internal)

	// Derivation restarts after the last used address.
	start := 0
	for i, address := range *chain {
		if w.used[address] {
			start = i + 1
		}
	}

	for uint32(len(*chain)-start) < limit {
		*chain = append(*chain, fmt.Sprintf("%s-%03d", w.chainName(internal), len(*chain)))
	}

	return append([]string(nil), (*chain)[start:start+int(limit)]...)
}

func (w *testWallet) AddressToLegacy(address string) string {
	return "legacy-" + address
}

func (w *testWallet) TransactionForHash(hash *chainhash.Hash) *txhelper.TxRecord {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.txns[*hash]
}

func (w *testWallet) RegisterTransaction(rec *txhelper.TxRecord) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if _, ok := w.txns[rec.Hash]; !ok {
		w.txOrder = append(w.txOrder, rec.Hash)
	}
	w.txns[rec.Hash] = rec

	for _, address := range w.payments[rec.Hash] {
		w.used[address] = true
	}
}

func (w *testWallet) UpdateTransaction(hash *chainhash.Hash, blockHeight, timestamp uint64) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if rec, ok := w.txns[*hash]; ok {
		rec.BlockHeight = blockHeight
		rec.Timestamp = timestamp
	}
}

func (w *testWallet) Transactions() []*txhelper.TxRecord {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	records := make([]*txhelper.TxRecord, 0, len(w.txOrder))
	for _, hash := range w.txOrder {
		records = append(records, w.txns[hash])
	}
	return records
}

func (w *testWallet) AmountSentByTx(rec *txhelper.TxRecord) int64 {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.amountSent[rec.Hash]
}

func (w *testWallet) TransactionIsValid(rec *txhelper.TxRecord) bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return !w.invalid[rec.Hash]
}

// addConfirmedSend seeds the wallet with a confirmed outgoing transaction
// at the given height.
func (w *testWallet) addConfirmedSend(height uint64, amount int64) chainhash.Hash {
	tx := testTx(height)
	rec := txhelper.NewTxRecord(tx, height, height*600)

	w.mtx.Lock()
	w.txns[rec.Hash] = rec
	w.txOrder = append(w.txOrder, rec.Hash)
	w.amountSent[rec.Hash] = amount
	w.mtx.Unlock()

	return rec.Hash
}

// testClientCall records one call made by a sync manager to its client.
type testClientCall struct {
	method    string
	rid       int32
	addresses []string
	beg, end  uint64
	rawTx     []byte
	hash      chainhash.Hash
}

// testClient is a scripted SyncClient that records every call. Optional
// hooks run synchronously from the manager's calling goroutine, which is
// legal: client calls are made outside the manager lock.
type testClient struct {
	mtx   sync.Mutex
	calls []testClientCall

	onGetBlockNumber  func(rid int32)
	onGetTransactions func(call testClientCall)
}

func (c *testClient) record(call testClientCall) {
	c.mtx.Lock()
	c.calls = append(c.calls, call)
	c.mtx.Unlock()
}

func (c *testClient) GetBlockNumber(rid int32) {
	c.record(testClientCall{method: "getBlockNumber", rid: rid})
	if c.onGetBlockNumber != nil {
		c.onGetBlockNumber(rid)
	}
}

func (c *testClient) GetTransactions(addresses []string, begBlockNumber, endBlockNumber uint64, rid int32) {
	call := testClientCall{
		method:    "getTransactions",
		rid:       rid,
		addresses: append([]string(nil), addresses...),
		beg:       begBlockNumber,
		end:       endBlockNumber,
	}
	c.record(call)
	if c.onGetTransactions != nil {
		c.onGetTransactions(call)
	}
}

func (c *testClient) SubmitTransaction(serializedTx []byte, txHash chainhash.Hash, rid int32) {
	c.record(testClientCall{
		method: "submitTransaction",
		rid:    rid,
		rawTx:  append([]byte(nil), serializedTx...),
		hash:   txHash,
	})
}

func (c *testClient) allCalls() []testClientCall {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]testClientCall(nil), c.calls...)
}

func (c *testClient) callsOf(method string) []testClientCall {
	var calls []testClientCall
	for _, call := range c.allCalls() {
		if call.method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

func (c *testClient) lastCallOf(method string) (testClientCall, bool) {
	calls := c.callsOf(method)
	if len(calls) == 0 {
		return testClientCall{}, false
	}
	return calls[len(calls)-1], true
}

// testTx builds a minimal signed transaction, unique per seed.
func testTx(seed uint64) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	var prevHash chainhash.Hash
	prevHash[0] = byte(seed)
	prevHash[1] = byte(seed >> 8)
	prevHash[2] = byte(seed >> 16)
	prevHash[3] = byte(seed >> 24)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: uint32(seed)},
		SignatureScript:  []byte{0x51},
	})
	tx.AddTxOut(&wire.TxOut{Value: int64(seed%100000) + 1000, PkScript: []byte{0x51}})
	return tx
}

// newTestClientManager wires a manager in API mode against the test doubles.
func newTestClientManager(params *ChainParams, w *testWallet, client *testClient,
	recorder *eventRecorder, earliestKeyTime int64, blockHeight uint64) *ClientSyncManager {
	return NewClientSyncManager(params, w, recorder, client, earliestKeyTime, blockHeight)
}
