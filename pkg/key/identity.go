package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity is the full address of a key.
type Identity struct {
	Namespace string
	Name      string
	Index     int
	SubIndex  int
}

// String formats the identity as "Namespace.Name[Index]" or
// "Namespace.Name[Index:SubIndex]" when SubIndex is set.
func (id Identity) String() string {
	if id.SubIndex != 0 {
		return fmt.Sprintf("%s.%s[%d:%d]", id.Namespace, id.Name, id.Index, id.SubIndex)
	}
	return fmt.Sprintf("%s.%s[%d]", id.Namespace, id.Name, id.Index)
}

// ParseIdentity parses the String form of an identity. The index suffix is
// optional and defaults to [0].
func ParseIdentity(s string) (Identity, error) {
	var id Identity

	path := s
	if open := strings.IndexByte(s, '['); open >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Identity{}, fmt.Errorf("%w: %q: unterminated index", ErrInvalidIdentity, s)
		}
		path = s[:open]
		idx := s[open+1 : len(s)-1]

		major, minor, hasMinor := strings.Cut(idx, ":")
		n, err := strconv.Atoi(major)
		if err != nil || n < 0 {
			return Identity{}, fmt.Errorf("%w: %q: bad index", ErrInvalidIdentity, s)
		}
		id.Index = n
		if hasMinor {
			n, err := strconv.Atoi(minor)
			if err != nil || n < 0 {
				return Identity{}, fmt.Errorf("%w: %q: bad sub-index", ErrInvalidIdentity, s)
			}
			id.SubIndex = n
		}
	}

	ns, name, ok := strings.Cut(path, ".")
	if !ok || ns == "" || name == "" {
		return Identity{}, fmt.Errorf("%w: %q: want Namespace.Name", ErrInvalidIdentity, s)
	}
	id.Namespace = ns
	id.Name = name
	return id, nil
}
