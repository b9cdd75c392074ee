package users

import (
	"strings"

	dbtypes "github.com/skillbazaar/backend/pkg/db/types"
)

func toStringArray(values []string) dbtypes.StringArray {
	out := make(dbtypes.StringArray, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
