package txhelper

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/hashforge/btclibwallet/addresshelper"
)

// TxOutAddresses returns the encoded addresses each output of tx pays to,
// one slice per output. Outputs with non-standard scripts decode to an empty
// slice. Wallet implementations use this to spot payments to their own
// addresses when a network backend announces a transaction.
func TxOutAddresses(tx *wire.MsgTx, params *chaincfg.Params) ([][]string, error) {
	outputAddresses := make([][]string, len(tx.TxOut))
	for i, txOut := range tx.TxOut {
		addresses, err := addresshelper.PkScriptAddresses(params, txOut.PkScript)
		if err != nil {
			return nil, err
		}
		outputAddresses[i] = addresses
	}
	return outputAddresses, nil
}
