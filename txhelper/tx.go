package txhelper

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// UnconfirmedBlockHeight marks a transaction that has not been mined yet.
const UnconfirmedBlockHeight uint64 = ^uint64(0)

// TxRecord is a wallet-side view of a transaction: the parsed message plus
// the block info announced by whichever network backend discovered it.
type TxRecord struct {
	MsgTx       *wire.MsgTx
	Hash        chainhash.Hash
	BlockHeight uint64
	Timestamp   uint64
}

// NewTxRecord wraps tx with the given block info. The transaction is not
// copied.
func NewTxRecord(tx *wire.MsgTx, blockHeight, timestamp uint64) *TxRecord {
	return &TxRecord{
		MsgTx:       tx,
		Hash:        tx.TxHash(),
		BlockHeight: blockHeight,
		Timestamp:   timestamp,
	}
}

// Confirmed reports whether the record has been mined.
func (rec *TxRecord) Confirmed() bool {
	return rec.BlockHeight != UnconfirmedBlockHeight
}

// ParseTx deserializes a wire-encoded bitcoin transaction.
func ParseTx(serializedTx []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	err := tx.Deserialize(bytes.NewReader(serializedTx))
	if err != nil {
		return nil, fmt.Errorf("error deserializing transaction: %v", err)
	}
	return tx, nil
}

// SerializeTx returns the wire encoding of tx.
func SerializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	err := tx.Serialize(&buf)
	if err != nil {
		return nil, fmt.Errorf("error serializing transaction: %v", err)
	}
	return buf.Bytes(), nil
}

// CopyTx returns a deep copy of tx.
func CopyTx(tx *wire.MsgTx) *wire.MsgTx {
	return tx.Copy()
}

// IsSigned reports whether every input of tx carries either a signature
// script or witness data. Unsigned transactions announced by a network
// backend are rejected before they reach the wallet.
func IsSigned(tx *wire.MsgTx) bool {
	if len(tx.TxIn) == 0 {
		return false
	}
	for _, txIn := range tx.TxIn {
		if len(txIn.SignatureScript) == 0 && len(txIn.Witness) == 0 {
			return false
		}
	}
	return true
}
