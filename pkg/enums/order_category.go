package enums

// OrderCategory describes how the paint for an order is produced. Stored values
// outside this set are accepted; the constants cover the shop's known categories.
type OrderCategory string

const (
	OrderCategoryNewMix     OrderCategory = "New Mix"
	OrderCategoryReorderMix OrderCategory = "Reorder Mix"
	OrderCategoryColourCode OrderCategory = "Colour Code"
)

// OrderCategoryAll is the report filter value that disables category filtering.
const OrderCategoryAll = "All"

func (c OrderCategory) String() string {
	return string(c)
}
