package domain

// Category is the closed set of expense categories. Manual entry rejects
// anything outside the set; the receipt scanner coerces unknown values to
// CategoryOther instead.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryGroceries      Category = "Groceries"
	CategoryTransportation Category = "Transportation"
	CategoryInternet       Category = "Internet"
	CategoryHealth         Category = "Health"
	CategorySport          Category = "Sport"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryBadHabits      Category = "BadHabits"
	CategoryOther          Category = "Other"
)

// AllCategories lists every valid category in display order.
var AllCategories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryTransportation,
	CategoryInternet,
	CategoryHealth,
	CategorySport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBadHabits,
	CategoryOther,
}

var categorySet = func() map[Category]bool {
	set := make(map[Category]bool, len(AllCategories))
	for _, c := range AllCategories {
		set[c] = true
	}
	return set
}()

func IsValidCategory(value string) bool {
	return categorySet[Category(value)]
}
