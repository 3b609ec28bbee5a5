package enums

// Colour code sentinels used when no real code has been mixed yet.
const (
	ColourCodePending       = "Pending"
	ColourCodeNotApplicable = "N/A"
)
