package domain

// AliasScope selects which canonical entity kind an alias resolves to.
type AliasScope string

const (
	AliasScopeCountry AliasScope = "country"
	AliasScopeLeague  AliasScope = "league"
	AliasScopeTeam    AliasScope = "team"
)

// String returns the string representation of AliasScope.
func (s AliasScope) String() string {
	return string(s)
}

// IsValid checks if the scope is a valid value.
func (s AliasScope) IsValid() bool {
	return s == AliasScopeCountry || s == AliasScopeLeague || s == AliasScopeTeam
}

// NameAlias maps a source spelling onto a canonical name.
// Context narrows the alias: country code for leagues, league external id
// for teams. An empty Context applies to every context of the scope.
// Corresponds to name_aliases table in PostgreSQL.
type NameAlias struct {
	Scope         AliasScope
	Context       string
	CanonicalName string
	SourceVariant string
}
