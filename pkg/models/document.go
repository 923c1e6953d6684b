package models

// CurrentSchemaVersion is stamped on every exported portfolio document.
// Version history:
//
//	0 (or absent) — legacy documents; properties may lack
//	  postRenovationValue and monthlyRecurringCosts, ids are optional.
//	1 — ids became mandatory.
//	2 — assumptions gained benchmarkRate.
const CurrentSchemaVersion = 2

// PortfolioDocument is the on-disk and over-the-wire shape of a whole
// portfolio: one set of assumptions plus every property. Import runs
// documents through an explicit migration step (see internal/portfolio)
// before they touch engine state.
type PortfolioDocument struct {
	SchemaVersion int               `json:"schemaVersion,omitempty"`
	Assumptions   GlobalAssumptions `json:"assumptions"`
	Properties    []Property        `json:"properties"`
}
