package walletdata

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// BlockRecord is a stored merkle block.
type BlockRecord struct {
	Height    uint64 `storm:"id"`
	Hash      string `storm:"unique"`
	Timestamp int64
	Raw       []byte
}

// PeerRecord is a stored network peer.
type PeerRecord struct {
	Address   string `storm:"id"`
	Services  uint64
	Timestamp int64
}

// SaveBlocks persists merkle block records at the given heights. With
// replace set, previously stored blocks are dropped first; a chain
// reorganization or rescan makes the old records meaningless.
// The two slices run in parallel.
func (db *DB) SaveBlocks(replace bool, blocks []*wire.MsgMerkleBlock, heights []uint64) error {
	if len(blocks) != len(heights) {
		return fmt.Errorf("block and height counts differ: %d != %d", len(blocks), len(heights))
	}

	if replace {
		if err := db.db.Drop(&BlockRecord{}); err != nil {
			return fmt.Errorf("error dropping stored blocks: %s", err.Error())
		}
		if err := db.db.Init(&BlockRecord{}); err != nil {
			return err
		}
	}

	for i, block := range blocks {
		var buf bytes.Buffer
		if err := block.BtcEncode(&buf, wire.ProtocolVersion, wire.LatestEncoding); err != nil {
			return fmt.Errorf("error serializing block: %s", err.Error())
		}

		record := &BlockRecord{
			Height:    heights[i],
			Hash:      block.Header.BlockHash().String(),
			Timestamp: block.Header.Timestamp.Unix(),
			Raw:       buf.Bytes(),
		}
		if err := db.db.Save(record); err != nil {
			return fmt.Errorf("error saving block %s: %s", record.Hash, err.Error())
		}
	}

	log.Debugf("Saved %d blocks (replace=%v)", len(blocks), replace)
	return nil
}

// SavePeers persists peer records, keyed by address so that a peer seen
// again simply refreshes its record. With replace set, previously stored
// peers are dropped first.
func (db *DB) SavePeers(replace bool, peers []PeerRecord) error {
	if replace {
		if err := db.db.Drop(&PeerRecord{}); err != nil {
			return fmt.Errorf("error dropping stored peers: %s", err.Error())
		}
		if err := db.db.Init(&PeerRecord{}); err != nil {
			return err
		}
	}

	for i := range peers {
		peer := peers[i]
		err := db.db.Save(&peer)
		if err == nil {
			continue
		}
		// storm reports a unique-field clash on re-save; refresh instead.
		if updateErr := db.db.Update(&peer); updateErr != nil {
			return fmt.Errorf("error saving peer %s: %s", peer.Address, err.Error())
		}
	}

	log.Debugf("Saved %d peers (replace=%v)", len(peers), replace)
	return nil
}
