package addresshelper

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// PkScript returns the payment script for the given encoded address.
func PkScript(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("error decoding address '%s': %s", address, err.Error())
	}

	return txscript.PayToAddrScript(addr)
}

// PkScriptAddresses extracts the encoded addresses a payment script pays to.
func PkScriptAddresses(params *chaincfg.Params, pkScript []byte) ([]string, error) {
	_, addresses, _, err := txscript.ExtractPkScriptAddrs(pkScript, params)
	if err != nil {
		return nil, err
	}

	encodedAddresses := make([]string, len(addresses))
	for i, address := range addresses {
		encodedAddresses[i] = address.EncodeAddress()
	}

	return encodedAddresses, nil
}

// Legacy re-encodes a native segwit pay-to-witness-pubkey-hash address as the
// pay-to-pubkey-hash form over the same key hash. Addresses that have no
// distinct legacy form (p2pkh, p2sh, p2wsh, taproot) are returned unchanged.
// Indexers predating segwit only know the legacy form, so scans query both.
func Legacy(address string, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return "", fmt.Errorf("error decoding address '%s': %s", address, err.Error())
	}

	witnessAddr, ok := addr.(*btcutil.AddressWitnessPubKeyHash)
	if !ok {
		return address, nil
	}

	legacyAddr, err := btcutil.NewAddressPubKeyHash(witnessAddr.Hash160()[:], params)
	if err != nil {
		return "", err
	}
	return legacyAddr.EncodeAddress(), nil
}

// Valid reports whether the address parses for the given network.
func Valid(address string, params *chaincfg.Params) bool {
	_, err := btcutil.DecodeAddress(address, params)
	return err == nil
}
