package btclibwallet

import (
	"net"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

func testPersistenceBlock(nonce uint32, height uint64) *MerkleBlock {
	var prevHash, merkleRoot chainhash.Hash
	header := wire.NewBlockHeader(1, &prevHash, &merkleRoot, 0x1d00ffff, nonce)
	header.Timestamp = time.Unix(1231006505+int64(nonce), 0)
	return &MerkleBlock{MsgMerkleBlock: wire.NewMsgMerkleBlock(header), Height: height}
}

func TestPersistentEventListener(t *testing.T) {
	inner := &eventRecorder{}
	listener, err := NewPersistentEventListener(t.TempDir(), inner)
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	listener.OnSyncEvent(&SyncEvent{
		Type:   SyncEventSetBlocks,
		Blocks: &BlocksPayload{Blocks: []*MerkleBlock{testPersistenceBlock(1, 10)}},
	})
	listener.OnSyncEvent(&SyncEvent{
		Type:   SyncEventAddBlocks,
		Blocks: &BlocksPayload{Blocks: []*MerkleBlock{testPersistenceBlock(2, 20)}},
	})
	listener.OnSyncEvent(&SyncEvent{
		Type: SyncEventSetPeers,
		Peers: &PeersPayload{Peers: []Peer{
			{IP: net.ParseIP("203.0.113.7"), Port: 8333, Services: 1, Timestamp: 99},
		}},
	})
	listener.OnSyncEvent(&SyncEvent{Type: SyncEventConnected})

	// Everything is forwarded, persistence events included.
	if got := len(inner.all()); got != 4 {
		t.Fatalf("forwarded %d events, want 4", got)
	}

	blocks, heights, err := listener.DB().Blocks()
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 || heights[0] != 10 || heights[1] != 20 {
		t.Fatalf("unexpected persisted blocks: %d, heights %v", len(blocks), heights)
	}

	peers, err := listener.DB().Peers()
	if err != nil {
		t.Fatal(err)
	}
	if len(peers) != 1 || peers[0].Address != "203.0.113.7:8333" {
		t.Fatalf("unexpected persisted peers %v", peers)
	}

	// A replace event drops the appended block.
	listener.OnSyncEvent(&SyncEvent{
		Type:   SyncEventSetBlocks,
		Blocks: &BlocksPayload{Blocks: []*MerkleBlock{testPersistenceBlock(3, 30)}},
	})
	_, heights, err = listener.DB().Blocks()
	if err != nil {
		t.Fatal(err)
	}
	if len(heights) != 1 || heights[0] != 30 {
		t.Fatalf("replace kept old blocks: %v", heights)
	}
}

func TestSettingsDB(t *testing.T) {
	settings, err := OpenSettingsDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer settings.Close()

	if got := settings.ReadBoolConfigValueForKey(InitialSyncCompletedConfigKey, false); got {
		t.Fatal("unset key did not default")
	}

	settings.SetBoolConfigValueForKey(InitialSyncCompletedConfigKey, true)
	settings.SetIntConfigValueForKey(LastSyncDepthConfigKey, int(SyncDepthMedium))
	settings.SetStringConfigValueForKey(UserAgentConfigKey, "btclibwallet-test")

	if !settings.ReadBoolConfigValueForKey(InitialSyncCompletedConfigKey, false) {
		t.Fatal("bool value lost")
	}
	if got := settings.ReadIntConfigValueForKey(LastSyncDepthConfigKey, -1); got != int(SyncDepthMedium) {
		t.Fatalf("int value lost: %d", got)
	}
	if got := settings.ReadStringConfigValueForKey(UserAgentConfigKey, ""); got != "btclibwallet-test" {
		t.Fatalf("string value lost: %q", got)
	}

	if err := settings.DeleteUserConfigValue(UserAgentConfigKey); err != nil {
		t.Fatal(err)
	}
	if got := settings.ReadStringConfigValueForKey(UserAgentConfigKey, "fallback"); got != "fallback" {
		t.Fatalf("deleted key still set: %q", got)
	}
}
