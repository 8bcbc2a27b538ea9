/*
File Name:  Split.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Splits a file into n fragments via per-chunk polynomial secret sharing.
*/

package fragment

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/Liblor/Cirrolus/polynomial"
)

const (
	// ChunkSize is the plaintext chunk size; each chunk becomes one
	// polynomial.
	ChunkSize = 128
	// BlockSize is the coefficient width; ChunkSize/BlockSize coefficients
	// per polynomial.
	BlockSize = 32
	// MinFragments is the minimum number of fragments required to
	// reconstruct a file (equals the polynomial degree bound).
	MinFragments = 4

	coeffsPerChunk = ChunkSize / BlockSize

	xUpperBound = 1_000_000_000_000_000_000 // 10^18, exclusive
)

// ErrTooFewFragments is returned when fewer than MinFragments fragments are
// requested or supplied.
var ErrTooFewFragments = errors.New("fragment: at least 4 fragments are required")

// Split divides data into n fragments. n must be >= MinFragments. uploader
// and filename identify the metadata recorded in each fragment; private
// marks the payload as pre-encrypted by the caller.
func Split(data []byte, n int, uploader, filename string, private bool) ([]*Fragment, error) {
	if n < MinFragments {
		return nil, ErrTooFewFragments
	}

	addedBytes := ChunkSize - (len(data) % ChunkSize)
	if addedBytes == 0 {
		addedBytes = ChunkSize
	}

	padding := make([]byte, addedBytes)
	if _, err := rand.Read(padding); err != nil {
		return nil, err
	}
	padded := append(append([]byte{}, data...), padding...)

	contentHash := sha256.Sum256(data)
	filenameHash := sha256.Sum256([]byte(filename))

	polys := make([]*polynomial.Polynomial, 0, len(padded)/ChunkSize)
	for off := 0; off < len(padded); off += ChunkSize {
		chunk := padded[off : off+ChunkSize]
		coeffs := make([]*big.Int, coeffsPerChunk)
		for i := 0; i < coeffsPerChunk; i++ {
			coeffs[i] = polynomial.Uint(chunk[i*BlockSize : (i+1)*BlockSize])
		}
		polys = append(polys, polynomial.New(coeffs...))
	}

	xs, err := sampleDistinctX(n)
	if err != nil {
		return nil, err
	}

	fragments := make([]*Fragment, n)
	for i, x := range xs {
		values := make([]*big.Int, len(polys))
		for k, p := range polys {
			values[k] = p.Eval(x, polynomial.Prime)
		}

		fragments[i] = &Fragment{
			Meta: Meta{
				Filename:   hex.EncodeToString(filenameHash[:]),
				Uploader:   uploader,
				Hash:       hex.EncodeToString(contentHash[:]),
				X:          x.Int64(),
				AddedBytes: addedBytes,
				Private:    private,
			},
			Values: values,
		}
	}

	return fragments, nil
}

// sampleDistinctX draws n distinct evaluation points uniformly from
// [1, 10^18) without replacement.
func sampleDistinctX(n int) ([]*big.Int, error) {
	seen := make(map[int64]bool, n)
	out := make([]*big.Int, 0, n)
	upper := big.NewInt(xUpperBound - 1)

	for len(out) < n {
		v, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return nil, err
		}
		v.Add(v, big.NewInt(1)) // shift into [1, 10^18)

		x := v.Int64()
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, v)
	}

	return out, nil
}
