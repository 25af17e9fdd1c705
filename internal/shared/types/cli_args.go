package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile    string
	StartDate     string
	EndDate       string
	Days          *int
	Warehouse     string
	CostPerCredit *float64
	Discount      *int
	ReportName    string
	ReportType    []string
	Dir           string
	Upload        string
	ShowSQL       bool
}
