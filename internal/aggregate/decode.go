package aggregate

import (
	"strconv"
	"strings"
)

// UserRef is one decoded child tuple from an aggregated join column.
type UserRef struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
}

// Decode reconstructs the ordered child list from a comma-joined id column and
// a comma-joined column of colon-delimited id:name:email:avatar tuples. The two
// columns must come from the same row ordering; position i of the id list
// corresponds to position i of the detail list. Empty input decodes to an
// empty list.
func Decode(idsCSV, detailsCSV string) ([]int64, []UserRef) {
	ids := DecodeIDs(idsCSV)

	refs := make([]UserRef, 0, len(ids))
	if detailsCSV == "" {
		return ids, refs
	}

	for _, tuple := range strings.Split(detailsCSV, ",") {
		parts := strings.SplitN(tuple, ":", 4)
		if len(parts) < 4 {
			continue
		}

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}

		ref := UserRef{ID: id, Name: parts[1], Email: parts[2]}
		if parts[3] != "" {
			avatar := parts[3]
			ref.Avatar = &avatar
		}
		refs = append(refs, ref)
	}

	return ids, refs
}

// DecodeIDs splits a comma-joined id column into int64 ids, skipping anything
// unparseable.
func DecodeIDs(idsCSV string) []int64 {
	if idsCSV == "" {
		return []int64{}
	}

	raw := strings.Split(idsCSV, ",")
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
