package model

// DefaultSystemCategories returns the seed set of system categories.
// System category names are globally unique, so income counterparts of
// expense names get their own spelling ("Gifts Received", "Other Income").
func DefaultSystemCategories() []Category {
	expense := []struct{ name, key string }{
		{"Food", "category.food"},
		{"Transport", "category.transport"},
		{"Housing", "category.housing"},
		{"Utilities", "category.utilities"},
		{"Healthcare", "category.healthcare"},
		{"Clothing", "category.clothing"},
		{"Entertainment", "category.entertainment"},
		{"Education", "category.education"},
		{"Gifts", "category.gifts"},
		{"Electronics", "category.electronics"},
		{"Beauty & Care", "category.beauty_care"},
		{"Sports & Fitness", "category.sports_fitness"},
		{"Travel", "category.travel"},
		{"Communication", "category.communication"},
		{"Taxes", "category.taxes"},
		{"Insurance", "category.insurance"},
		{"Other", "category.other"},
	}
	income := []struct{ name, key string }{
		{"Salary", "category.salary"},
		{"Freelance", "category.freelance"},
		{"Investments", "category.investments"},
		{"Gifts Received", "category.gifts_received"},
		{"Tax Refund", "category.tax_refund"},
		{"Interest", "category.interest"},
		{"Rental Income", "category.rental_income"},
		{"Sale", "category.sale"},
		{"Other Income", "category.other_income"},
	}

	categories := make([]Category, 0, len(expense)+len(income))
	for _, c := range expense {
		categories = append(categories, Category{
			Name: c.name, Type: TypeOutcome, IsSystem: true, TranslationKey: c.key,
		})
	}
	for _, c := range income {
		categories = append(categories, Category{
			Name: c.name, Type: TypeIncome, IsSystem: true, TranslationKey: c.key,
		})
	}
	return categories
}
