// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net"
)

// NetAddressSize is the fixed serialized size of a NetAddress: services (8) +
// IP (16) + port (2).
const NetAddressSize = 26

// NetAddress defines information about a peer on the network including the
// services it supports, its IP address, and port.  Unlike the legacy bitcoin
// format there is no timestamp field.
type NetAddress struct {
	// Bitfield which identifies the services supported by the address.
	Services ServiceFlag

	// IP address of the peer.  IPv4 addresses are stored as IPv4-mapped
	// IPv6 addresses.
	IP net.IP

	// Port the peer is using.  This is encoded in big endian on the wire
	// which differs from most everything else.
	Port uint16
}

// NewNetAddressIPPort returns a new NetAddress using the provided IP, port,
// and supported services.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Services: services,
		IP:       ip,
		Port:     port,
	}
}

// readNetAddress reads an encoded NetAddress from r.
func readNetAddress(r io.Reader, na *NetAddress) error {
	var ip [16]byte
	err := readElements(r, &na.Services, &ip)
	if err != nil {
		return err
	}

	// Sigh.  Protocol mandates port be encoded big endian.
	var port uint16
	err = binary.Read(r, binary.BigEndian, &port)
	if err != nil {
		return err
	}

	na.IP = net.IP(ip[:])
	na.Port = port
	return nil
}

// writeNetAddress serializes a NetAddress to w.
func writeNetAddress(w io.Writer, na *NetAddress) error {
	// Ensure to always write 16 bytes even if the IP is nil.
	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	err := writeElements(w, na.Services, ip)
	if err != nil {
		return err
	}

	// Sigh.  Protocol mandates port be encoded big endian.
	return binary.Write(w, binary.BigEndian, na.Port)
}
