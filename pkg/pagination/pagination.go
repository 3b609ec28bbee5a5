package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any list or search query can request.
	MaxLimit = 200
	// AuditLogLimit is the fixed page size of the audit log listing.
	AuditLogLimit = 100
)

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	return Clamp(limit, DefaultLimit, MaxLimit)
}

// Clamp returns def for non-positive limits and caps the rest at max.
func Clamp(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
