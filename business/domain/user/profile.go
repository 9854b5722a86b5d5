package user

import (
	"fmt"
	"strings"
)

// Profile is a role tag attached to a user.
type Profile int

const (
	ProfileAdmin Profile = iota
	ProfileUser
	ProfileCustomer
	ProfileTechnician
)

var profileNames = []string{"ROLE_ADMIN", "ROLE_USER", "ROLE_CUSTOMER", "ROLE_TECHNICIAN"}

func (p Profile) String() string {
	if p < ProfileAdmin || p > ProfileTechnician {
		return "UNKNOWN"
	}
	return profileNames[p]
}

// ProfileNames returns the accepted string forms, in declaration order.
func ProfileNames() []string {
	names := make([]string, len(profileNames))
	copy(names, profileNames)
	return names
}

// ParseProfile creates a profile from its string form. Matching is exact.
func ParseProfile(profile string) (Profile, error) {
	for i, p := range profileNames {
		if p == profile {
			return Profile(i), nil
		}
	}
	return Profile(-1), fmt.Errorf("%q is invalid profile, expected one of %s", profile, strings.Join(profileNames, ", "))
}

// ParseProfiles creates a set of profiles from strings, dropping duplicates
// while keeping first-seen order.
func ParseProfiles(profiles []string) ([]Profile, error) {
	results := make([]Profile, 0, len(profiles))
	seen := make(map[Profile]bool, len(profiles))
	for _, p := range profiles {
		profile, err := ParseProfile(p)
		if err != nil {
			return nil, fmt.Errorf("parsing profile: %w", err)
		}
		if seen[profile] {
			continue
		}
		seen[profile] = true
		results = append(results, profile)
	}
	return results, nil
}

// EncodeProfiles converts profiles into their string forms. The result is
// never nil so it encodes as an empty json array.
func EncodeProfiles(pp []Profile) []string {
	results := make([]string, len(pp))
	for i, p := range pp {
		results[i] = p.String()
	}
	return results
}
