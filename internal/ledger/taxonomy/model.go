package taxonomy

// Category labels a transaction for expense breakdowns. Categories are a
// flat namespace.
type Category struct {
	ID   int64
	Name string
}

// Tag labels transactions and accounts. Tags form a parent-pointer tree;
// tags flagged UsedForGrouping act as rollup targets for reporting.
type Tag struct {
	ID              int64
	Name            string
	UsedForGrouping bool
	ParentID        *int64
}
