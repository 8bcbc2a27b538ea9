/*
File Name:  FragmentStore.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

On-disk fragment layout: hosted fragments live under <uploader>/, keyed by
content-hash + filename-hash; fragments collected towards a download live
under cache/save/<content-hash>/<x>.
*/

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Liblor/Cirrolus/fragment"
)

// ErrNotFound is returned when a fetch matches zero or more than one file.
var ErrNotFound = errors.New("store: fragment not found")

// FragmentStore manages the on-disk layout for hosted and cached fragments,
// rooted at a single working directory.
type FragmentStore struct {
	Root string
}

// NewFragmentStore returns a store rooted at dir, creating it if necessary.
func NewFragmentStore(dir string) (*FragmentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FragmentStore{Root: dir}, nil
}

// SaveHosted persists raw fragment bytes under the uploader's directory. The
// payload must parse as a fragment (magic bytes checked first); the on-disk
// filename is derived from its own metadata, not from caller-supplied
// hashes, so a forged magic header cannot spoof another file's name.
func (s *FragmentStore) SaveHosted(uploader string, data []byte) error {
	if !fragment.IsFragment(data) {
		return errors.New("store: payload is not a fragment")
	}
	f, err := fragment.Decode(data)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.Root, uploader)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	name := f.Meta.Hash + f.Meta.Filename
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

// FetchHosted locates the single fragment hosted for uploader whose content
// hash is contentHashHex. Exactly one match is required.
func (s *FragmentStore) FetchHosted(uploader, contentHashHex string) ([]byte, error) {
	dir := filepath.Join(s.Root, uploader)
	matches, err := filepath.Glob(filepath.Join(dir, contentHashHex+"?*"))
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, ErrNotFound
	}
	return os.ReadFile(matches[0])
}

// ListHosted lists fragments stored for uploader, keyed by content hash,
// valued by filename hash. If filenameHashHex is non-empty, results are
// filtered to that filename hash.
func (s *FragmentStore) ListHosted(uploader, filenameHashHex string) (map[string]string, error) {
	dir := filepath.Join(s.Root, uploader)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if len(name) != 128 {
			continue
		}
		contentHash, fileHash := name[:64], name[64:]
		if filenameHashHex != "" && fileHash != filenameHashHex {
			continue
		}
		out[contentHash] = fileHash
	}
	return out, nil
}

// SaveCached persists one fragment being collected towards a download.
func (s *FragmentStore) SaveCached(contentHashHex string, x int64, data []byte) error {
	dir := filepath.Join(s.Root, "cache", "save", contentHashHex)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, strconv.FormatInt(x, 10)), data, 0644)
}

// CachedCount returns how many fragments have been collected so far for
// contentHashHex.
func (s *FragmentStore) CachedCount(contentHashHex string) (int, error) {
	dir := filepath.Join(s.Root, "cache", "save", contentHashHex)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// LoadCached decodes every fragment collected so far for contentHashHex.
func (s *FragmentStore) LoadCached(contentHashHex string) ([]*fragment.Fragment, error) {
	dir := filepath.Join(s.Root, "cache", "save", contentHashHex)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]*fragment.Fragment, 0, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		f, err := fragment.Decode(data)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
