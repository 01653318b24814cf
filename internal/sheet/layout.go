package sheet

// Layout fixes where the parser looks inside a month sheet. The source
// workbook lays every month out the same way, so the column positions and
// section markers are configuration handed in at construction, not something
// inferred from the sheet itself.
type Layout struct {
	// Category block: expense rows under the "Home" marker, optionally
	// followed by a "Bangalore" section whose names get prefixed.
	CategoryCol int
	PlannedCol  int
	ActualCol   int

	// Funds block: name/amount pairs under the funds marker.
	FundNameCol   int
	FundAmountCol int

	// Loans block: name/amount pairs split into a home-side section and a
	// friends-side section sharing the same columns.
	LoanNameCol   int
	LoanAmountCol int

	HomeMarker        string
	BangaloreMarker   string
	FundsMarker       string
	HomeLoansPrefix   string
	FriendLoansPrefix string

	BangalorePrefix string

	// Terminators end the category block when they show up as a row name.
	Terminators []string
	// ReservedFundRows are skipped inside the funds block.
	ReservedFundRows []string
}

// DefaultLayout mirrors the source workbook: categories in columns 0-2,
// funds in 7-8, loans in 10-11.
func DefaultLayout() Layout {
	return Layout{
		CategoryCol: 0,
		PlannedCol:  1,
		ActualCol:   2,

		FundNameCol:   7,
		FundAmountCol: 8,

		LoanNameCol:   10,
		LoanAmountCol: 11,

		HomeMarker:        "home",
		BangaloreMarker:   "bangalore",
		FundsMarker:       "funds",
		HomeLoansPrefix:   "loans/interest",
		FriendLoansPrefix: "friends side",

		BangalorePrefix: "Bangalore - ",

		Terminators: []string{
			"bangalore",
			"funds",
			"salary",
			"loans/interest - home side",
			"friends side",
			"loans/interest",
		},
		ReservedFundRows: []string{"planned payments", "salary"},
	}
}
