/*
File Name:  Codec.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Big-endian integer packing, fixed-width, used by the fragment format for its
32-byte coefficients and 33-byte y-values.
*/

package polynomial

import "math/big"

// PutUint packs n as a big-endian unsigned integer occupying exactly width bytes.
// n must be non-negative and fit within width bytes; excess high-order bytes are
// silently truncated, matching the Python reference's byte-slicing behavior.
func PutUint(n *big.Int, width int) []byte {
	raw := n.Bytes()
	out := make([]byte, width)

	if len(raw) > width {
		raw = raw[len(raw)-width:]
	}
	copy(out[width-len(raw):], raw)

	return out
}

// Uint unpacks a big-endian unsigned integer of arbitrary width.
func Uint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
