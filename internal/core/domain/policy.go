package domain

// RolePolicy fixes, per role, the registration quota (absent means unlimited)
// and whether a new account is approved immediately or waits for an admin.
// The policy is immutable configuration: build one at startup and inject it
// into the registration service. Changing it is a deployment decision.
type RolePolicy struct {
	quotas      map[Role]int
	autoApprove map[Role]struct{}
}

// NewRolePolicy builds a policy from explicit tables. The maps are copied so
// callers cannot mutate the policy afterwards.
func NewRolePolicy(quotas map[Role]int, autoApprove []Role) RolePolicy {
	p := RolePolicy{
		quotas:      make(map[Role]int, len(quotas)),
		autoApprove: make(map[Role]struct{}, len(autoApprove)),
	}
	for r, q := range quotas {
		p.quotas[r] = q
	}
	for _, r := range autoApprove {
		p.autoApprove[r] = struct{}{}
	}
	return p
}

// DefaultRolePolicy returns the production policy: staff-like roles are
// capped at 3 accounts each, and only admin, client, and developer accounts
// activate without manual approval.
func DefaultRolePolicy() RolePolicy {
	return NewRolePolicy(
		map[Role]int{
			RoleSales:     3,
			RoleFinance:   3,
			RolePartner:   3,
			RoleInvestor:  3,
			RoleDeveloper: 3,
		},
		[]Role{RoleAdmin, RoleClient, RoleDeveloper},
	)
}

// IsValidRole reports membership in the closed role set.
func (p RolePolicy) IsValidRole(role Role) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// QuotaFor returns the registration cap for a role. ok is false when the
// role is unlimited.
func (p RolePolicy) QuotaFor(role Role) (quota int, ok bool) {
	quota, ok = p.quotas[role]
	return quota, ok
}

// AutoApprove reports whether accounts with this role are approved at
// creation time.
func (p RolePolicy) AutoApprove(role Role) bool {
	_, ok := p.autoApprove[role]
	return ok
}
