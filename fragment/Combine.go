/*
File Name:  Combine.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Reconstructs the original file content from a set of >= MinFragments
fragments via Lagrange interpolation over the shared polynomial field.
*/

package fragment

import (
	"errors"
	"math/big"

	"github.com/Liblor/Cirrolus/polynomial"
)

// ErrInconsistent is returned when the supplied fragments do not all carry
// the same content hash (they are not fragments of the same file).
var ErrInconsistent = errors.New("fragment: inconsistent fragment set")

// Combine reconstructs the original file bytes from fragments, along with
// the private flag recorded at split time. At least MinFragments fragments
// must be supplied; extras beyond the first four are accepted and do not
// change the result.
func Combine(fragments []*Fragment) (data []byte, private bool, err error) {
	if len(fragments) < MinFragments {
		return nil, false, ErrTooFewFragments
	}

	hash := fragments[0].Meta.Hash
	addedBytes := fragments[0].Meta.AddedBytes
	chunkCount := len(fragments[0].Values)

	for _, f := range fragments[1:] {
		if f.Meta.Hash != hash {
			return nil, false, ErrInconsistent
		}
		if len(f.Values) != chunkCount {
			return nil, false, ErrInconsistent
		}
	}

	out := make([]byte, 0, chunkCount*ChunkSize)
	for k := 0; k < chunkCount; k++ {
		points := make([]polynomial.Coordinate, len(fragments))
		for i, f := range fragments {
			points[i] = polynomial.Coordinate{
				X: big.NewInt(f.Meta.X),
				Y: f.Values[k],
			}
		}

		p := polynomial.Interpolate(points, polynomial.Prime)
		for c := 0; c < coeffsPerChunk; c++ {
			coeff := big.NewInt(0)
			if c < len(p.Coeffs) {
				coeff = p.Coeffs[c]
			}
			out = append(out, polynomial.PutUint(coeff, BlockSize)...)
		}
	}

	if addedBytes < 1 || addedBytes > ChunkSize || addedBytes > len(out) {
		return nil, false, ErrInconsistent
	}
	out = out[:len(out)-addedBytes]

	return out, fragments[0].Meta.Private, nil
}
