package csvfile

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one amount column, signed or paired with a type column.
	amountSingle amountMode = iota
	// amountSplit means separate income and expense columns.
	amountSplit
)

// Profile describes the column layout of a supported CSV export. Header
// names are compared case-insensitively.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	AmountMode  amountMode
	AmountCol   string // used when AmountMode == amountSingle
	TypeCol     string // optional, used when AmountMode == amountSingle
	IncomeCol   string // used when AmountMode == amountSplit
	ExpenseCol  string // used when AmountMode == amountSplit
	CategoryCol string // optional
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.IncomeCol, p.ExpenseCol)
	}

	return cols
}

// profiles is the ordered list of layouts tried during auto-detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:        "split",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSplit,
		IncomeCol:   "income",
		ExpenseCol:  "expense",
		CategoryCol: "category",
	},
	{
		Name:        "english",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSingle,
		AmountCol:   "amount",
		TypeCol:     "type",
		CategoryCol: "category",
	},
	{
		Name:        "korean-split",
		DateCol:     "날짜",
		DescCol:     "내용",
		AmountMode:  amountSplit,
		IncomeCol:   "수입",
		ExpenseCol:  "지출",
		CategoryCol: "분류",
	},
	{
		Name:        "korean",
		DateCol:     "날짜",
		DescCol:     "내용",
		AmountMode:  amountSingle,
		AmountCol:   "금액",
		TypeCol:     "구분",
		CategoryCol: "분류",
	},
}
