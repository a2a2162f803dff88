package types

// Event is a typed record of a state transition, published for audit and
// indexing. Attribute values are rendered as strings so downstream consumers
// need no schema knowledge.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
