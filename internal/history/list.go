package history

import (
	"cmp"
	"slices"
	"strings"
)

// Sorted returns a copy of sessions with pinned sessions first and each group
// ordered by timestamp, newest first.
func Sorted(sessions []Session) []Session {
	out := slices.Clone(sessions)
	slices.SortStableFunc(out, func(a, b Session) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return out
}

// Filter returns the sessions whose title contains query, ignoring case.
// An empty query matches everything.
func Filter(sessions []Session, query string) []Session {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(sessions)
	}

	var out []Session
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.Title), query) {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the index of the session with the given id, or -1.
func Find(sessions []Session, id string) int {
	return slices.IndexFunc(sessions, func(s Session) bool { return s.ID == id })
}

// Partition splits sorted sessions into the pinned and recent groups.
func Partition(sessions []Session) (pinned, recent []Session) {
	for _, s := range sessions {
		if s.Pinned {
			pinned = append(pinned, s)
		} else {
			recent = append(recent, s)
		}
	}
	return pinned, recent
}
