// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MsgGetData implements the Message interface and represents a getdata
// message.  It is used to request data such as blocks and transactions from
// another peer.  It should be used in response to the inv (MsgInv) message to
// request the actual data referenced by each inventory vector the receiving
// peer doesn't already have.  The payload is identical to the inv message.
type MsgGetData struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		str := fmt.Sprintf("too many invvect in message [max %v]",
			MaxInvPerMsg)
		return messageError("MsgGetData.AddInvVect", str)
	}

	msg.InvList = append(msg.InvList, iv)
	return nil
}

// Decode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgGetData) Decode(r io.Reader, pver uint32) error {
	var count uint8
	if err := readElement(r, &count); err != nil {
		return err
	}

	msg.InvList = make([]*InvVect, 0, count)
	for i := uint8(0); i < count; i++ {
		iv := InvVect{}
		if err := readInvVect(r, &iv); err != nil {
			return err
		}
		msg.InvList = append(msg.InvList, &iv)
	}

	return nil
}

// Encode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgGetData) Encode(w io.Writer, pver uint32) error {
	count := len(msg.InvList)
	if count > MaxInvPerMsg {
		str := fmt.Sprintf("too many invvect in message [%v]", count)
		return messageError("MsgGetData.Encode", str)
	}

	if err := writeElement(w, uint8(count)); err != nil {
		return err
	}

	for _, iv := range msg.InvList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgGetData) Command() string {
	return CmdGetData
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	// Count 1 byte + max inventory vectors.
	return 1 + (MaxInvPerMsg * maxInvVectPayload)
}

// NewMsgGetData returns a new getdata message that conforms to the Message
// interface.  See MsgGetData for details.
func NewMsgGetData() *MsgGetData {
	return &MsgGetData{
		InvList: make([]*InvVect, 0, 16),
	}
}
