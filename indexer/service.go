package indexer

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/txhelper"
	"golang.org/x/sync/errgroup"
)

// addressChunkSize bounds how many addresses are packed into one query; the
// service rejects oversized URLs.
const addressChunkSize = 25

// Announcer receives the results of indexer queries, quoting the request id
// the query was issued under. It is satisfied by the sync manager's
// announce surface.
type Announcer interface {
	AnnounceGetBlockNumber(rid int32, blockHeight uint64)
	AnnounceGetTransactionsItem(rid int32, serializedTx []byte, timestamp, blockHeight uint64)
	AnnounceGetTransactionsDone(rid int32, success bool)
	AnnounceSubmitTransaction(rid int32, tx *wire.MsgTx, errCode int32)
}

// Service queries a blockchain-db style HTTP API and feeds the results back
// through an Announcer. All query methods return promptly and do their work
// on background goroutines, as the sync manager requires.
type Service struct {
	client    *Client
	announcer Announcer
}

// NewService creates an indexer service speaking to the API at
// conf.BaseUrl.
func NewService(conf *ClientConf) *Service {
	return &Service{client: NewClient(conf)}
}

// BindAnnouncer sets the destination for query results. It must be called
// before the sync manager using the service connects; typically the
// announcer is the sync manager itself.
func (s *Service) BindAnnouncer(announcer Announcer) {
	s.announcer = announcer
}

type blockHeightResponse struct {
	Height uint64 `json:"height"`
}

type transactionsResponse struct {
	Embedded struct {
		Transactions []transactionResponse `json:"transactions"`
	} `json:"_embedded"`
	Page struct {
		Number     int `json:"number"`
		TotalPages int `json:"total_pages"`
	} `json:"page"`
}

type transactionResponse struct {
	Hash        string `json:"hash"`
	Raw         string `json:"raw"`
	Timestamp   uint64 `json:"timestamp"`
	BlockHeight uint64 `json:"block_height"`
}

type submitRequest struct {
	Hash string `json:"hash"`
	Raw  string `json:"raw"`
}

type submitResponse struct {
	Error int32 `json:"error"`
}

// GetBlockNumber fetches the current chain height and announces it.
func (s *Service) GetBlockNumber(rid int32) {
	go func() {
		var resp blockHeightResponse
		err := s.client.Do("GET", "/blocks/height", nil, nil, &resp)
		if err != nil {
			log.Errorf("block height query failed: %v", err)
			return
		}
		s.announcer.AnnounceGetBlockNumber(rid, resp.Height)
	}()
}

// GetTransactions fetches all transactions involving the given addresses in
// [begBlockNumber, endBlockNumber), announcing each found transaction and
// then the overall completion. Address chunks are fetched concurrently;
// within a chunk, result pages are walked to the end before anything is
// announced, so the sync manager sees the query as single-shot.
func (s *Service) GetTransactions(addresses []string, begBlockNumber, endBlockNumber uint64, rid int32) {
	go func() {
		var chunks [][]string
		for len(addresses) > addressChunkSize {
			chunks = append(chunks, addresses[:addressChunkSize])
			addresses = addresses[addressChunkSize:]
		}
		if len(addresses) > 0 {
			chunks = append(chunks, addresses)
		}

		results := make([][]transactionResponse, len(chunks))
		var eg errgroup.Group
		for i := range chunks {
			i := i
			eg.Go(func() error {
				transactions, err := s.fetchTransactionsChunk(chunks[i], begBlockNumber, endBlockNumber)
				if err != nil {
					return err
				}
				results[i] = transactions
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			log.Errorf("transactions query failed: %v", err)
			s.announcer.AnnounceGetTransactionsDone(rid, false)
			return
		}

		for _, transactions := range results {
			for _, transaction := range transactions {
				serializedTx, err := hex.DecodeString(transaction.Raw)
				if err != nil {
					log.Errorf("transaction %s is not valid hex: %v", transaction.Hash, err)
					s.announcer.AnnounceGetTransactionsDone(rid, false)
					return
				}
				s.announcer.AnnounceGetTransactionsItem(rid, serializedTx,
					transaction.Timestamp, transaction.BlockHeight)
			}
		}

		s.announcer.AnnounceGetTransactionsDone(rid, true)
	}()
}

// fetchTransactionsChunk pages through the transactions endpoint for one
// address chunk.
func (s *Service) fetchTransactionsChunk(addresses []string, begBlockNumber, endBlockNumber uint64) ([]transactionResponse, error) {
	var transactions []transactionResponse

	for page := 1; ; page++ {
		queryParams := url.Values{}
		for _, address := range addresses {
			queryParams.Add("address", address)
		}
		queryParams.Set("start_height", strconv.FormatUint(begBlockNumber, 10))
		queryParams.Set("end_height", strconv.FormatUint(endBlockNumber, 10))
		queryParams.Set("page", strconv.Itoa(page))

		var resp transactionsResponse
		err := s.client.Do("GET", "/transactions", queryParams, nil, &resp)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, resp.Embedded.Transactions...)
		if page >= resp.Page.TotalPages {
			return transactions, nil
		}
	}
}

// SubmitTransaction posts a serialized transaction for broadcast and
// announces the outcome.
func (s *Service) SubmitTransaction(serializedTx []byte, txHash chainhash.Hash, rid int32) {
	go func() {
		tx, err := txhelper.ParseTx(serializedTx)
		if err != nil {
			log.Errorf("refusing to submit unparsable transaction %s: %v", txHash, err)
			return
		}

		payload := &submitRequest{
			Hash: txHash.String(),
			Raw:  hex.EncodeToString(serializedTx),
		}

		var resp submitResponse
		err = s.client.Do("POST", "/transactions", nil, payload, &resp)
		if err != nil {
			log.Errorf("transaction submission failed: %v", err)
			s.announcer.AnnounceSubmitTransaction(rid, tx, -1)
			return
		}

		s.announcer.AnnounceSubmitTransaction(rid, tx, resp.Error)
	}()
}

// String describes the service endpoint.
func (s *Service) String() string {
	return fmt.Sprintf("indexer(%s)", s.client.BaseUrl)
}
