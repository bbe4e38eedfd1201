package notes

// Category groups notes.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryIdeas    Category = "ideas"
	CategoryStudy    Category = "study"
	CategoryTravel   Category = "travel"
	CategoryRecipes  Category = "recipes"
	CategoryHealth   Category = "health"

	DefaultCategory = CategoryGeneral
)

// CategoryInfo is the display metadata of a category.
type CategoryInfo struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

var catalogue = []CategoryInfo{
	{CategoryGeneral, "General", "#6b7280"},
	{CategoryWork, "Work", "#3b82f6"},
	{CategoryPersonal, "Personal", "#10b981"},
	{CategoryIdeas, "Ideas", "#f59e0b"},
	{CategoryStudy, "Study", "#8b5cf6"},
	{CategoryTravel, "Travel", "#06b6d4"},
	{CategoryRecipes, "Recipes", "#ef4444"},
	{CategoryHealth, "Health", "#84cc16"},
}

// Categories returns the catalogue in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), catalogue...)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, info := range catalogue {
		if info.Value == c {
			return true
		}
	}
	return false
}
