package common

import (
	"strings"

	z "github.com/Oudwins/zog"
)

// IssueMessages flattens zog issues to field -> messages, dropping zog's bookkeeping keys.
func IssueMessages(issues z.ZogIssueMap) map[string][]string {
	out := make(map[string][]string, len(issues))
	for field, list := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		out[field] = Mapper(list, func(i *z.ZogIssue) string { return i.Message })
	}
	return out
}
