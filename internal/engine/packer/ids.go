package packer

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stitch/internal/core/domain"
)

const minIDLength = 4

// IDs maps canonical module names to short loader identifiers.
type IDs map[domain.InternedString]string

// AssignIDs derives an identifier for every module from the hash of its canonical name.
// Names are visited in sorted order and each takes the shortest free prefix of its
// base-36 hash, so identifiers do not depend on discovery order.
func AssignIDs(table *domain.Table) IDs {
	names := table.Names()
	slices.SortFunc(names, func(a, b domain.InternedString) int { return strings.Compare(a.String(), b.String()) })

	ids := make(IDs, len(names))
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		full := strconv.FormatUint(xxhash.Sum64String(name.String()), 36)
		id := ""
		for n := min(minIDLength, len(full)); n <= len(full); n++ {
			if !taken[full[:n]] {
				id = full[:n]
				break
			}
		}
		for i := 1; id == ""; i++ {
			if candidate := full + "_" + strconv.Itoa(i); !taken[candidate] {
				id = candidate
			}
		}
		taken[id] = true
		ids[name] = id
	}
	return ids
}
