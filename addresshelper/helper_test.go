package addresshelper

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

var testHash160 = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09,
	0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13,
}

func TestLegacyFromWitnessAddress(t *testing.T) {
	params := &chaincfg.MainNetParams

	witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(testHash160, params)
	if err != nil {
		t.Fatal(err)
	}
	legacyAddr, err := btcutil.NewAddressPubKeyHash(testHash160, params)
	if err != nil {
		t.Fatal(err)
	}

	legacy, err := Legacy(witnessAddr.EncodeAddress(), params)
	if err != nil {
		t.Fatal(err)
	}
	if legacy != legacyAddr.EncodeAddress() {
		t.Fatalf("unexpected legacy form %s, want %s", legacy, legacyAddr.EncodeAddress())
	}

	// A p2pkh address has no distinct legacy form.
	same, err := Legacy(legacyAddr.EncodeAddress(), params)
	if err != nil {
		t.Fatal(err)
	}
	if same != legacyAddr.EncodeAddress() {
		t.Fatalf("p2pkh address was rewritten to %s", same)
	}

	if _, err := Legacy("not-an-address", params); err == nil {
		t.Fatal("expected an error for garbage input")
	}
}

func TestPkScriptRoundTrip(t *testing.T) {
	params := &chaincfg.MainNetParams

	addr, err := btcutil.NewAddressPubKeyHash(testHash160, params)
	if err != nil {
		t.Fatal(err)
	}

	pkScript, err := PkScript(addr.EncodeAddress(), params)
	if err != nil {
		t.Fatal(err)
	}

	addresses, err := PkScriptAddresses(params, pkScript)
	if err != nil {
		t.Fatal(err)
	}
	if len(addresses) != 1 || addresses[0] != addr.EncodeAddress() {
		t.Fatalf("unexpected extracted addresses %v", addresses)
	}
}

func TestValid(t *testing.T) {
	params := &chaincfg.MainNetParams

	addr, _ := btcutil.NewAddressPubKeyHash(testHash160, params)
	if !Valid(addr.EncodeAddress(), params) {
		t.Fatal("valid address rejected")
	}
	if Valid("not-an-address", params) {
		t.Fatal("garbage accepted")
	}
}
