package catalog

import "odds-aggregator/internal/domain"

// SourceContext is the immutable per-run state of one source: its identity
// and the catalog loaded for the run. It is built once per adapter run and
// passed by value to every matching and ingestion call.
type SourceContext struct {
	Source  domain.Source
	Catalog *Catalog
}
