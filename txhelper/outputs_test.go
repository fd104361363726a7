package txhelper

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

func TestTxOutAddresses(t *testing.T) {
	params := &chaincfg.MainNetParams

	pkHash := make([]byte, 20)
	pkHash[0] = 0x42
	addr, err := btcutil.NewAddressPubKeyHash(pkHash, params)
	if err != nil {
		t.Fatal(err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatal(err)
	}

	tx := signedTx()
	tx.TxOut[0].PkScript = pkScript

	outputAddresses, err := TxOutAddresses(tx, params)
	if err != nil {
		t.Fatal(err)
	}
	if len(outputAddresses) != 1 || len(outputAddresses[0]) != 1 {
		t.Fatalf("unexpected shape %v", outputAddresses)
	}
	if outputAddresses[0][0] != addr.EncodeAddress() {
		t.Fatalf("unexpected address %s, want %s", outputAddresses[0][0], addr.EncodeAddress())
	}
}
