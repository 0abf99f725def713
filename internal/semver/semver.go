package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// String returns the canonical form ("1.2.0", "1.0.1-alpha").
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Normalize returns the canonical form of a plugin Version header.
//
// Headers that are not semantic versions ("trunk", "2010-05") are returned trimmed but
// otherwise untouched, with ok=false.
func Normalize(raw string) (normalized string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	v, err := ParseVersion(trimmed)
	if err != nil {
		return trimmed, false
	}
	return v.String(), true
}
