package multisig

import (
	"bytes"
	"sort"
)

// NormalizeMembers returns a copy of given members sorted ascending by key.
// The input is left untouched. Duplicates are kept so that Invariant can
// reject them.
func NormalizeMembers(members []Member) []Member {
	if len(members) == 0 {
		return nil
	}
	res := make([]Member, len(members))
	copy(res, members)
	sort.SliceStable(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}
