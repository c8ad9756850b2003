package handler

// RequestPayload represents the expected JSON structure in the request body.
type RequestPayload struct {
	Message string `json:"message"`
}

// ReplyPayload is the success body.
type ReplyPayload struct {
	Reply string `json:"reply"`
}

// ErrorPayload is the failure body. Details carries the upstream error
// payload when there is one.
type ErrorPayload struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
