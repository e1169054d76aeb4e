package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIdentityCorrupt is returned when a persisted identity entry cannot be
// decoded. Callers recover by clearing the namespace, never by surfacing
// the raw error to the user.
var ErrIdentityCorrupt = errors.New("persisted identity corrupt")

// EncodeIdentity serializes an identity for persistence.
func EncodeIdentity(id Identity) (string, error) {
	data, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeIdentity parses a persisted identity entry. Any syntactic failure
// is reported as [ErrIdentityCorrupt]; the decoded content itself is not
// validated, matching the trust model of the persisting side.
func DecodeIdentity(raw string) (Identity, error) {
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrIdentityCorrupt, err)
	}
	return id, nil
}
