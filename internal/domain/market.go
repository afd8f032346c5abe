package domain

// MarketGroup is a canonical market group, e.g. "1X2" or "Over/Under".
// Corresponds to groups table in PostgreSQL.
type MarketGroup struct {
	ID   int64
	Name string
}

// MarketOutcome is a canonical outcome scoped under a group, e.g. "1", "X", "2".
// Corresponds to markets table in PostgreSQL.
type MarketOutcome struct {
	ID      int64
	Name    string
	GroupID int64 // FK to groups
}
