package btclibwallet

import (
	"net"
	"strconv"

	"github.com/btcsuite/btcd/wire"
)

// MerkleBlock pairs a wire merkle block with the height the P2P backend
// verified it at; the wire message alone does not carry one.
type MerkleBlock struct {
	*wire.MsgMerkleBlock
	Height uint64
}

// Peer describes a network peer the P2P backend has found useful enough to
// persist across restarts.
type Peer struct {
	IP        net.IP
	Port      uint16
	Services  uint64
	Timestamp int64
}

// String returns the peer's host:port form.
func (p Peer) String() string {
	return net.JoinHostPort(p.IP.String(), strconv.Itoa(int(p.Port)))
}

// BlockInfo pairs a block height with its header timestamp.
type BlockInfo struct {
	Height    uint64
	Timestamp int64
}
