// Package roster holds the personnel directory used to resolve raw sender
// tokens from chat exports into known identities.
package roster

// Unknown is the sentinel used when a sender token has no directory entry.
const Unknown = "Unknown"

// Identity is a resolved personnel entry.
type Identity struct {
	Name string
	Role string
}

// Directory maps a raw sender token (phone number or display name, verbatim
// after trimming) to an identity. Loaded once at startup and treated as
// read-only for the process lifetime.
type Directory map[string]Identity

// Resolve looks up a sender token. A miss is terminal: both fields come back
// as the Unknown sentinel and no fuzzy matching is attempted.
func (d Directory) Resolve(senderID string) Identity {
	if id, ok := d[senderID]; ok {
		return id
	}
	return Identity{Name: Unknown, Role: Unknown}
}
