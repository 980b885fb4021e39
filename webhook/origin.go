package webhook

/* OriginPolicy decides whether a callback's network origin is acceptable
 * An empty allow-list means no restriction is configured
 */
type OriginPolicy struct {
	allowed map[string]struct{}
}

// NewOriginPolicy creates a policy from an origin allow-list
func NewOriginPolicy(origins []string) OriginPolicy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return OriginPolicy{allowed: allowed}
}

// Allows returns true when no restriction is configured or the origin is
// a member of the allow-list. Pure; denial logging is the caller's job.
func (p OriginPolicy) Allows(origin string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	_, ok := p.allowed[origin]
	return ok
}

// Restricted reports whether an allow-list is configured
func (p OriginPolicy) Restricted() bool {
	return len(p.allowed) > 0
}
