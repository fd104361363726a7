package btclibwallet

import (
	"reflect"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	addr, err := NormalizeAddress("203.0.113.7", "8333")
	if err != nil || addr != "203.0.113.7:8333" {
		t.Fatalf("unexpected result %q, %v", addr, err)
	}

	addr, err = NormalizeAddress("203.0.113.7:18333", "8333")
	if err != nil || addr != "203.0.113.7:18333" {
		t.Fatalf("unexpected result %q, %v", addr, err)
	}
}

func TestParsePeerAddresses(t *testing.T) {
	addresses, err := ParsePeerAddresses("203.0.113.7;203.0.113.8:18333", "8333")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"203.0.113.7:8333", "203.0.113.8:18333"}
	if !reflect.DeepEqual(addresses, want) {
		t.Fatalf("unexpected addresses %v, want %v", addresses, want)
	}

	addresses, err = ParsePeerAddresses("", "8333")
	if err != nil || addresses != nil {
		t.Fatalf("empty input returned %v, %v", addresses, err)
	}
}

func TestPeerFromAddress(t *testing.T) {
	peer, err := PeerFromAddress("203.0.113.7:8333", 42)
	if err != nil {
		t.Fatal(err)
	}
	if peer.Port != 8333 || peer.Timestamp != 42 || peer.IP.String() != "203.0.113.7" {
		t.Fatalf("unexpected peer %+v", peer)
	}
	if peer.String() != "203.0.113.7:8333" {
		t.Fatalf("unexpected peer string %q", peer.String())
	}

	if _, err := PeerFromAddress("203.0.113.7", 0); err == nil {
		t.Fatal("expected an error for a missing port")
	}
}
