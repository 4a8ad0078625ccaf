package complaint

// Query is an incoming complaint checked against the corpus. It is never stored.
type Query struct {
	location    string
	description string
}

// NewQuery creates a Query. Any location and description are accepted: an
// unknown location yields no candidates and an empty description matches nothing.
func NewQuery(location, description string) Query {
	return Query{location: location, description: description}
}

// Location returns the partition key of the query.
func (q Query) Location() string { return q.location }

// Description returns the raw description of the query.
func (q Query) Description() string { return q.description }
