// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
)

// ProtocolVersion is the latest protocol version this package supports.
const ProtocolVersion uint32 = 1

// ServiceFlag identifies services supported by a node.
type ServiceFlag uint64

const (
	// SFNodeNetwork is a flag used to indicate a peer is a full node.
	SFNodeNetwork ServiceFlag = 1 << iota
)

// Map of service flags back to their constant names for pretty printing.
var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork: "SFNodeNetwork",
}

// String returns the ServiceFlag in human-readable form.
func (f ServiceFlag) String() string {
	// No flags are set.
	if f == 0 {
		return "0x0"
	}

	// Add individual bit flags.
	s := ""
	for flag, name := range sfStrings {
		if f&flag == flag {
			s += name + "|"
			f -= flag
		}
	}

	// Add any remaining flags which aren't accounted for as hex.
	s = stripLastChar(s)
	if f != 0 {
		s += "|0x" + fmt.Sprintf("%x", uint64(f))
	}
	return stripLeadingChar(s)
}

func stripLastChar(s string) string {
	if len(s) > 0 && s[len(s)-1] == '|' {
		return s[:len(s)-1]
	}
	return s
}

func stripLeadingChar(s string) string {
	if len(s) > 0 && s[0] == '|' {
		return s[1:]
	}
	return s
}

// ChainNet represents which network a message belongs to.
type ChainNet uint32

// Constants used to indicate the message's network.  They can also be used to
// seek to the next message when a stream's state is unknown, but this package
// does not provide that functionality since it's generally a better idea to
// simply disconnect clients that are misbehaving over TCP.
const (
	// MainNet represents the main network.  The little-endian encoding
	// puts the bytes CA FE BA BE on the wire.
	MainNet ChainNet = 0xbebafeca
)

// bnStrings is a map of networks back to their constant names for
// pretty printing.
var bnStrings = map[ChainNet]string{
	MainNet: "MainNet",
}

// String returns the ChainNet in human-readable form.
func (n ChainNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}

	return fmt.Sprintf("Unknown ChainNet (%d)", uint32(n))
}
