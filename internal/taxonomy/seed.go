package taxonomy

// SeedCategory is one of the categories every fresh ledger starts with.
type SeedCategory struct {
	Name  string
	Color string
	Icon  string
}

// Defaults returns the categories seeded into an empty database. They are
// protected against deletion.
func Defaults() []SeedCategory {
	return []SeedCategory{
		{Name: "Food & Dining", Color: "#EF4444", Icon: "utensils"},
		{Name: "Groceries", Color: "#F97316", Icon: "shopping-cart"},
		{Name: "Shopping", Color: "#F59E0B", Icon: "shopping-bag"},
		{Name: "Transportation", Color: "#EAB308", Icon: "car"},
		{Name: "Entertainment", Color: "#84CC16", Icon: "film"},
		{Name: "Bills & Utilities", Color: "#22C55E", Icon: "file-text"},
		{Name: "Healthcare", Color: "#14B8A6", Icon: "heart"},
		{Name: "Travel", Color: "#06B6D4", Icon: "plane"},
		{Name: "Education", Color: "#3B82F6", Icon: "book"},
		{Name: "Subscriptions", Color: "#6366F1", Icon: "repeat"},
		{Name: "Personal Care", Color: "#8B5CF6", Icon: "smile"},
		{Name: "Gifts & Donations", Color: "#A855F7", Icon: "gift"},
		{Name: "Fees & Charges", Color: "#D946EF", Icon: "alert-circle"},
		{Name: "Income", Color: "#10B981", Icon: "trending-up"},
		{Name: "Transfer", Color: "#6B7280", Icon: "repeat"},
		{Name: "Other", Color: "#9CA3AF", Icon: "more-horizontal"},
	}
}
