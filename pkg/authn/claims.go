package authn

// The identity provider has shipped the same logical values under several
// claim names across SDK versions. Normalization happens here, once, right
// after verification; nothing downstream branches on provider claim naming.

var (
	userIDKeys  = []string{"sub", "user_id", "userId"}
	orgIDKeys   = []string{"org_id", "organization_id", "orgId"}
	orgSlugKeys = []string{"org_slug", "org", "orgSlug"}
	roleKeys    = []string{"roles", "org_roles", "role"}
)

func normalizeClaims(claims map[string]any) *Session {
	return &Session{
		UserID:  firstString(claims, userIDKeys),
		OrgID:   firstString(claims, orgIDKeys),
		OrgSlug: firstString(claims, orgSlugKeys),
		Roles:   firstRoles(claims, roleKeys),
	}
}

func firstString(claims map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// firstRoles accepts both a single role string and a list of roles, since
// the provider emits either depending on how membership was granted.
func firstRoles(claims map[string]any, keys []string) []string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return []string{v}
			}
		case []any:
			roles := make([]string, 0, len(v))
			for _, item := range v {
				if role, ok := item.(string); ok && role != "" {
					roles = append(roles, role)
				}
			}
			if len(roles) > 0 {
				return roles
			}
		}
	}
	return nil
}
