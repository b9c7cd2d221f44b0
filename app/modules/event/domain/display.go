package eventdomain

import "strings"

// UnknownMemberName is shown for attendees with neither a name nor an email.
const UnknownMemberName = "Unknown member"

// DisplayName resolves the name shown for a person: their name, else their
// email, else UnknownMemberName.
func DisplayName(p Person) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		return email
	}
	return UnknownMemberName
}

func toMember(p Person) Member {
	return Member{ID: p.ID, Name: DisplayName(p)}
}
