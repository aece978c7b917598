package accounts

import "github.com/cleared-dev/compta/internal/model"

// DefaultChart returns the seed chart of accounts for an association.
func DefaultChart() []model.Account {
	return []model.Account{
		{Code: "1", Name: "Capital accounts", Type: model.TypeNone},
		{Code: "10", Name: "Association funds", Type: model.TypeEquity, TypeParent: true},
		{Code: "102", Name: "Funds without right of recovery", Type: model.TypeEquity},
		{Code: "11", Name: "Retained earnings", Type: model.TypeEquity},
		{Code: "12", Name: "Result of the year", Type: model.TypeEquity},
		{Code: "4", Name: "Third-party accounts", Type: model.TypeNone},
		{Code: "40", Name: "Suppliers", Type: model.TypeLiability, TypeParent: true},
		{Code: "401", Name: "Suppliers", Type: model.TypeLiability},
		{Code: "41", Name: "Members and customers", Type: model.TypeAsset, TypeParent: true},
		{Code: "411", Name: "Members", Type: model.TypeAsset},
		{Code: "471", Name: "Suspense account", Type: model.TypeLiability},
		{Code: "5", Name: "Financial accounts", Type: model.TypeNone},
		{Code: "51", Name: "Banks", Type: model.TypeAsset, TypeParent: true},
		{Code: "512", Name: "Bank account", Type: model.TypeAsset},
		{Code: "512A", Name: "Savings account", Type: model.TypeAsset},
		{Code: "53", Name: "Cash", Type: model.TypeAsset, TypeParent: true},
		{Code: "530", Name: "Cash box", Type: model.TypeAsset},
		{Code: "6", Name: "Expenses", Type: model.TypeExpense, TypeParent: true},
		{Code: "606", Name: "Supplies", Type: model.TypeExpense},
		{Code: "613", Name: "Rent", Type: model.TypeExpense},
		{Code: "626", Name: "Postage and telecoms", Type: model.TypeExpense},
		{Code: "7", Name: "Revenue", Type: model.TypeRevenue, TypeParent: true},
		{Code: "706", Name: "Services", Type: model.TypeRevenue},
		{Code: "74", Name: "Grants", Type: model.TypeRevenue},
		{Code: "756", Name: "Membership fees", Type: model.TypeRevenue},
		{Code: "86", Name: "Volunteering contributions (use)", Type: model.TypeVolunteering, TypeParent: true},
		{Code: "864", Name: "Volunteer staff", Type: model.TypeVolunteering},
		{Code: "87", Name: "Volunteering contributions (source)", Type: model.TypeVolunteering},
		{Code: "875", Name: "Volunteer work", Type: model.TypeVolunteering},
		{Code: "9", Name: "Analytical", Type: model.TypeAnalytical, TypeParent: true},
		{Code: "9PROJ", Name: "Projects", Type: model.TypeAnalytical},
	}
}
