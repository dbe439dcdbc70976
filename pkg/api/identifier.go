package api

import (
	"regexp"
	"strings"
)

var publicIDRe = regexp.MustCompile(`^[a-zA-Z0-9]{3}-[a-zA-Z0-9]{3}-[a-zA-Z0-9]{3}$`)

// NormalizeID reduces a user-supplied test reference to its public id. A bare
// `xxx-xxx-xxx` id is returned unchanged; anything longer, such as a URL
// pasted from the backend UI, is reduced to the portion after the last slash.
func NormalizeID(id string) string {
	if publicIDRe.MatchString(id) {
		return id
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
