/*
File Name:  Fragment.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Fragment file format: "#CL" + version byte + 4-byte big-endian metadata
length + JSON metadata + concatenated 33-byte big-endian y-values, one per
polynomial piece.
*/

package fragment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/Liblor/Cirrolus/polynomial"
)

// Magic is the fragment file header, version 0.
var Magic = []byte{'#', 'C', 'L', 0}

const yValueWidth = 33

// Meta is the metadata block embedded in every fragment file.
type Meta struct {
	Filename    string `json:"filename"`     // hex SHA-256 of the original filename bytes
	Uploader    string `json:"uploader"`     // uploader username
	Hash        string `json:"hash"`         // hex SHA-256 of the original file content
	X           int64  `json:"x"`            // evaluation point, in [1, 1e18)
	AddedBytes  int    `json:"added_bytes"`  // padding length stripped on reconstruction
	Private     bool   `json:"private"`      // true iff payload bytes are pre-encrypted
}

// Fragment is one parsed fragment: its metadata plus the y-value for each
// chunk polynomial, in chunk order.
type Fragment struct {
	Meta   Meta
	Values []*big.Int
}

var errBadMagic = errors.New("fragment: bad magic header")

// Encode serializes a fragment to its on-disk/on-wire byte representation.
func Encode(f *Fragment) ([]byte, error) {
	metaJSON, err := json.Marshal(f.Meta)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Write(Magic)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(metaJSON)))
	buf.Write(lenBuf[:])
	buf.Write(metaJSON)

	for _, y := range f.Values {
		buf.Write(polynomial.PutUint(y, yValueWidth))
	}

	return buf.Bytes(), nil
}

// Decode parses a fragment from its byte representation. It returns
// errBadMagic if the header does not match, without otherwise touching the
// input.
func Decode(data []byte) (*Fragment, error) {
	if len(data) < len(Magic)+4 || !bytes.Equal(data[:len(Magic)], Magic) {
		return nil, errBadMagic
	}

	metaLen := binary.BigEndian.Uint32(data[len(Magic) : len(Magic)+4])
	offset := len(Magic) + 4
	if uint32(len(data)-offset) < metaLen {
		return nil, errors.New("fragment: truncated metadata")
	}

	var meta Meta
	if err := json.Unmarshal(data[offset:offset+int(metaLen)], &meta); err != nil {
		return nil, err
	}
	offset += int(metaLen)

	remaining := data[offset:]
	if len(remaining)%yValueWidth != 0 {
		return nil, errors.New("fragment: truncated y-values")
	}

	values := make([]*big.Int, len(remaining)/yValueWidth)
	for i := range values {
		values[i] = polynomial.Uint(remaining[i*yValueWidth : (i+1)*yValueWidth])
	}

	return &Fragment{Meta: meta, Values: values}, nil
}

// IsFragment reports whether data begins with the fragment magic header.
func IsFragment(data []byte) bool {
	return len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic)
}
