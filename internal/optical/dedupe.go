package optical

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tyilmaz/optikeval/internal/model"
)

// Dedupe collapses records that share a national ID, keeping the one that
// appears last in the file. The convention is that a re-scan correcting an
// earlier read is appended at the end, so the final entry is authoritative.
// Records with a blank national ID get a synthetic per-record key and are
// never merged with each other. Output is re-sorted by record ID so the
// original presentation order survives.
func Dedupe(records []model.OpticalRecord) []model.OpticalRecord {
	unique := make(map[string]model.OpticalRecord, len(records))
	order := make([]string, 0, len(records))

	for _, r := range records {
		key := strings.TrimSpace(r.NationalID)
		if key == "" {
			key = fmt.Sprintf("__no_tc_%d", r.ID)
		}
		if _, seen := unique[key]; !seen {
			order = append(order, key)
		}
		unique[key] = r
	}

	out := make([]model.OpticalRecord, 0, len(unique))
	for _, key := range order {
		out = append(out, unique[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidTC reports whether a national ID has the expected shape: exactly
// eleven digits. Used for flagging suspect scans, never for rejecting them.
func ValidTC(tc string) bool {
	tc = strings.TrimSpace(tc)
	if len(tc) != 11 {
		return false
	}
	for _, r := range tc {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
