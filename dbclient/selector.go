package dbclient

// Selector is the server-side document selector filtering a changes
// feed: the disjunction over the active set of schematic identifiers,
// each contributing the clause _id in [name+":", name+":\uFFF0").
type Selector struct {
	Names []string
}

type idRange struct {
	Gt string `json:"$gt"`
	Lt string `json:"$lt"`
}

type orClause struct {
	ID idRange `json:"_id"`
}

type selectorBody struct {
	Or []orClause `json:"$or"`
}

type selectorRequest struct {
	Selector selectorBody `json:"selector"`
}

func (s Selector) marshal() selectorRequest {
	ors := make([]orClause, 0, len(s.Names))
	for _, name := range s.Names {
		ors = append(ors, orClause{ID: idRange{
			Gt: name + ":",
			Lt: name + ":\uFFF0",
		}})
	}
	return selectorRequest{Selector: selectorBody{Or: ors}}
}
