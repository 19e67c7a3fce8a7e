package store

// TableRow is one table in the default schema with its row-security flag.
type TableRow struct {
	Schema     string
	Name       string
	RLSEnabled bool
}

// PolicyRow is one row from pg_policies.
type PolicyRow struct {
	Name      string
	Command   string
	Roles     []string
	Using     string
	WithCheck string
}
