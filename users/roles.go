package users

// The predicates below are pure functions of the profile. A nil profile (no
// signed-in user) satisfies none of them.

// HasRole checks if the user holds role r
func (p *Profile) HasRole(r RoleType) bool {
	if p == nil {
		return false
	}
	for _, role := range p.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the user holds at least one of roles. An empty set is
// satisfied by nobody.
func (p *Profile) HasAnyRole(roles ...RoleType) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// HasPermission checks if the user was granted permission perm
func (p *Profile) HasPermission(perm Permission) bool {
	if p == nil {
		return false
	}
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

func (p *Profile) IsAdmin() bool    { return p.HasRole(RoleAdmin) }
func (p *Profile) IsAgent() bool    { return p.HasRole(RoleAgent) }
func (p *Profile) IsClient() bool   { return p.HasRole(RoleClient) }
func (p *Profile) IsEmployee() bool { return p.HasRole(RoleEmployee) }

// MissingRoles returns nil when the user holds any of required, otherwise the
// full required set (the guard reports all of them).
func (p *Profile) MissingRoles(required []RoleType) []RoleType {
	if len(required) == 0 || p.HasAnyRole(required...) {
		return nil
	}
	return required
}

// MissingPermissions returns every permission in required the user lacks.
func (p *Profile) MissingPermissions(required []Permission) []Permission {
	var missing []Permission
	for _, perm := range required {
		if !p.HasPermission(perm) {
			missing = append(missing, perm)
		}
	}
	return missing
}

// RoleNames is a convenience for rendering.
func (p *Profile) RoleNames() []string {
	if p == nil {
		return nil
	}
	return Names(p.Roles)
}

// Names converts roles to their string form, preserving order.
func Names(roles []RoleType) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}
