package btclibwallet

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// NormalizeAddress adds the default port to addr if it does not already
// carry one.
func NormalizeAddress(addr string, defaultPort string) (string, error) {
	// If the first SplitHostPort errors because of a missing port and not
	// for an invalid host, add the port.  If the second SplitHostPort
	// fails, then a port is not missing and the original error should be
	// returned.
	host, port, origErr := net.SplitHostPort(addr)
	if origErr == nil {
		return net.JoinHostPort(host, port), nil
	}
	addr = net.JoinHostPort(addr, defaultPort)
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", origErr
	}
	return addr, nil
}

// ParsePeerAddresses splits a ";"-separated list of peer addresses,
// normalizing each against the network's default port. An entry that does
// not parse is skipped with a log message; an input with entries but no
// valid ones is an error.
func ParsePeerAddresses(peerAddresses string, defaultPort string) ([]string, error) {
	if peerAddresses == "" {
		return nil, nil
	}

	var validPeerAddresses []string
	for _, address := range strings.Split(peerAddresses, ";") {
		peerAddress, err := NormalizeAddress(address, defaultPort)
		if err != nil {
			log.Errorf("peer address invalid: %v", err)
		} else {
			validPeerAddresses = append(validPeerAddresses, peerAddress)
		}
	}

	if len(validPeerAddresses) == 0 {
		return nil, errors.New(ErrInvalidPeers)
	}
	return validPeerAddresses, nil
}

// PeerFromAddress builds a Peer record from a host:port string.
func PeerFromAddress(address string, timestamp int64) (*Peer, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, errors.New(ErrInvalidAddress)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, errors.New(ErrInvalidAddress)
		}
		ip = ips[0]
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, errors.New(ErrInvalidAddress)
	}

	return &Peer{
		IP:        ip,
		Port:      uint16(port),
		Timestamp: timestamp,
	}, nil
}
