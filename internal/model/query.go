package model

// AllJurisdictions is the state value the API treats as "no filter"
const AllJurisdictions = "ALL"

// DetailFailurePolicy decides what happens to a row whose detail lookup failed
type DetailFailurePolicy string

const (
	// KeepEmptyDetail emits the row with blank detail columns
	KeepEmptyDetail DetailFailurePolicy = "empty"
	// DropRow leaves the bill out of the export entirely
	DropRow DetailFailurePolicy = "drop"
)

// Query is one logical search as configured on the command line
type Query struct {
	Text          string
	State         string
	Year          Year
	Since         string
	Details       bool
	OnDetailError DetailFailurePolicy
}

// Jurisdiction returns the state filter in its wire form
func (q Query) Jurisdiction() string {
	if q.State == "" {
		return AllJurisdictions
	}
	return q.State
}
