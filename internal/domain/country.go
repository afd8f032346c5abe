package domain

// Country is canonical reference data. Mutated only by operators.
// Corresponds to countries table in PostgreSQL.
type Country struct {
	Code     string // PRIMARY KEY, e.g. "GB"
	Name     string // canonical name
	IsActive bool
}

// League is a canonical competition within a country.
// Corresponds to leagues table in PostgreSQL.
type League struct {
	ID          int64  // BIGSERIAL primary key
	ExternalID  int64  // canonical numeric id referenced by fixtures
	Name        string // canonical name
	CountryCode string // FK to countries
	IsActive    bool
}
