package walletdata

import (
	"bytes"
	"fmt"

	"github.com/asdine/storm"
	"github.com/btcsuite/btcd/wire"
)

// Blocks returns all stored merkle blocks in ascending height order,
// alongside their heights.
func (db *DB) Blocks() ([]*wire.MsgMerkleBlock, []uint64, error) {
	var records []BlockRecord
	err := db.db.AllByIndex("Height", &records)
	if err != nil && err != storm.ErrNotFound {
		return nil, nil, fmt.Errorf("error reading stored blocks: %s", err.Error())
	}

	blocks := make([]*wire.MsgMerkleBlock, 0, len(records))
	heights := make([]uint64, 0, len(records))
	for _, record := range records {
		block := &wire.MsgMerkleBlock{}
		err = block.BtcDecode(bytes.NewReader(record.Raw), wire.ProtocolVersion, wire.LatestEncoding)
		if err != nil {
			return nil, nil, fmt.Errorf("error deserializing stored block %s: %s",
				record.Hash, err.Error())
		}
		blocks = append(blocks, block)
		heights = append(heights, record.Height)
	}

	return blocks, heights, nil
}

// Peers returns all stored peer records.
func (db *DB) Peers() ([]PeerRecord, error) {
	var records []PeerRecord
	err := db.db.All(&records)
	if err != nil && err != storm.ErrNotFound {
		return nil, fmt.Errorf("error reading stored peers: %s", err.Error())
	}
	return records, nil
}
