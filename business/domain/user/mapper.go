package user

// FromEntity builds the outbound view of usr.
func FromEntity(usr User) UserResponse {
	return UserResponse{
		ID:       usr.ID,
		Name:     usr.Name,
		Email:    usr.Email,
		Profiles: EncodeProfiles(usr.Profiles),
	}
}

// FromEntities maps every user in order.
func FromEntities(users []User) []UserResponse {
	results := make([]UserResponse, len(users))
	for i, usr := range users {
		results[i] = FromEntity(usr)
	}
	return results
}

// FromRequest builds a transient user out of req. ID and PasswordHash are left
// for the store and the service to fill.
func FromRequest(req CreateUserRequest) User {
	return User{
		Name:     req.Name,
		Email:    req.Email,
		Profiles: knownProfiles(req.Profiles),
	}
}

// ApplyUpdate returns a copy of usr with every non-nil field of req applied.
// ID and PasswordHash are never touched here.
func ApplyUpdate(req UpdateUserRequest, usr User) User {
	if req.Name != nil {
		usr.Name = *req.Name
	}

	if req.Email != nil {
		usr.Email = *req.Email
	}

	if req.Profiles != nil {
		usr.Profiles = knownProfiles(req.Profiles)
	}

	return usr
}

// knownProfiles keeps the recognised tags only, requests are validated before
// they reach the mapper.
func knownProfiles(profiles []string) []Profile {
	results := make([]Profile, 0, len(profiles))
	seen := make(map[Profile]bool, len(profiles))
	for _, p := range profiles {
		profile, err := ParseProfile(p)
		if err != nil || seen[profile] {
			continue
		}
		seen[profile] = true
		results = append(results, profile)
	}
	return results
}
