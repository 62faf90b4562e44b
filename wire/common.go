// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// maxVarBytesLen is a sanity bound on any single length-prefixed byte string
// read from the wire.  It matches the maximum message payload so a forged
// length prefix cannot cause a larger allocation than a whole message could.
const maxVarBytesLen = MaxMessagePayload

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	return binary.Read(r, binary.LittleEndian, element)
}

// readElements reads multiple items from r.  It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	return binary.Write(w, binary.LittleEndian, element)
}

// writeElements writes multiple items to w.  It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarBytes reads a variable length byte array.  A byte array is encoded
// as a 4-byte little endian length followed by the bytes themselves.  An
// additional upper bound protects against memory exhaustion from forged
// length prefixes; fieldName is only used for the error message.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	var count uint32
	if err := readElement(r, &count); err != nil {
		return nil, err
	}

	if count > maxAllowed || count > maxVarBytesLen {
		str := "%s is larger than the max allowed size [count %d, max %d]"
		return nil, messageError("ReadVarBytes",
			fmt.Sprintf(str, fieldName, count, maxAllowed))
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a 4-byte
// little endian length followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := writeElement(w, uint32(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// RandomUint64 returns a cryptographically random uint64 value.  It is used
// for connection and ping nonces.
func RandomUint64() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// ReadVarString reads a string prefixed with a single length byte.  It is
// used for the version message's user agent.
func ReadVarString(r io.Reader) (string, error) {
	var count uint8
	if err := readElement(r, &count); err != nil {
		return "", err
	}
	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteVarString serializes str to w prefixed by its single-byte length.
func WriteVarString(w io.Writer, str string) error {
	if len(str) > 255 {
		format := "string too long [len %d, max 255]"
		return messageError("WriteVarString", fmt.Sprintf(format, len(str)))
	}
	if err := writeElement(w, uint8(len(str))); err != nil {
		return err
	}
	_, err := w.Write([]byte(str))
	return err
}
