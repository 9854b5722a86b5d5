package user_test

import (
	"reflect"
	"testing"

	"github.com/hamidoujand/user-service/business/domain/user"
)

func TestParseProfile(t *testing.T) {
	tests := map[string]struct {
		input   string
		profile user.Profile
		wantErr bool
	}{
		"admin":      {input: "ROLE_ADMIN", profile: user.ProfileAdmin},
		"user":       {input: "ROLE_USER", profile: user.ProfileUser},
		"customer":   {input: "ROLE_CUSTOMER", profile: user.ProfileCustomer},
		"technician": {input: "ROLE_TECHNICIAN", profile: user.ProfileTechnician},
		"lower case": {input: "role_user", wantErr: true},
		"unknown":    {input: "ROLE_ROOT", wantErr: true},
		"empty":      {input: "", wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			profile, err := user.ParseProfile(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected %q to be rejected", test.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected the profile to be parsed: %s", err)
			}

			if profile != test.profile {
				t.Errorf("expected the profile to be %q, but got %q", test.profile, profile)
			}

			if profile.String() != test.input {
				t.Errorf("expected %q to round trip, got %q", test.input, profile.String())
			}
		})
	}
}

func TestParseProfilesDropsDuplicates(t *testing.T) {
	profiles, err := user.ParseProfiles([]string{"ROLE_USER", "ROLE_ADMIN", "ROLE_USER"})
	if err != nil {
		t.Fatalf("should be able to create profiles from slice of strings: %s", err)
	}

	want := []user.Profile{user.ProfileUser, user.ProfileAdmin}
	if !reflect.DeepEqual(profiles, want) {
		t.Errorf("expected %v, got %v", want, profiles)
	}
}

func TestEncodeProfilesNeverNil(t *testing.T) {
	if got := user.EncodeProfiles(nil); got == nil || len(got) != 0 {
		t.Errorf("expected an empty non nil slice, got %#v", got)
	}

	if got := user.Profile(42).String(); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for an out of range profile, got %s", got)
	}
}
