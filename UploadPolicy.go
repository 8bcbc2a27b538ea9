/*
File Name:  UploadPolicy.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

The upload fragment-count planner: how many fragments to split a file into,
as a function of current peer-set size.
*/

package cirrolus

// calculateFragmentCount returns how many fragments an upload should be
// split into given peerCount known peers, or 0 if there are too few peers
// to attempt an upload at all.
func calculateFragmentCount(peerCount int) int {
	switch {
	case peerCount < 4:
		return 0
	case peerCount < 20:
		return peerCount
	default:
		return int(float64(peerCount) * 0.8)
	}
}
