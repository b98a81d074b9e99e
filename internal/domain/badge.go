package domain

import "strings"

// Badge is the visual rendering of a verification status: a display label
// and one of four fixed color classes (yellow, green, red, gray).
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// BadgeFor maps a raw status string to its badge. Matching is
// case-insensitive; a nil-ish/unrecognized status falls back to a gray
// generic badge rather than an error.
func BadgeFor(status string) Badge {
	switch strings.ToLower(status) {
	case StatusPending:
		return Badge{Label: "Pending", Color: "yellow"}
	case StatusApproved:
		return Badge{Label: "Approved", Color: "green"}
	case StatusVerified:
		return Badge{Label: "Verified", Color: "green"}
	case StatusRejected:
		return Badge{Label: "Rejected", Color: "red"}
	}
	return Badge{Label: titleOrUnknown(status), Color: "gray"}
}

func titleOrUnknown(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
