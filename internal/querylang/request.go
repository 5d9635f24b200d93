package querylang

// Request is what the transport collaborator receives. Body is the printed
// query text; Variables is always empty for this Mirror, since the update
// loop never sends GraphQL variables, but kept for contract completeness.
type Request struct {
	Body      string
	Variables map[string]any
}

// NewRequest wraps a Document as a transport Request.
func NewRequest(doc Document) Request {
	return Request{Body: doc.Print(), Variables: map[string]any{}}
}
