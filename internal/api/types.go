package api

// PinResponse is the payload for both pin endpoints. Result is null while the
// handoff is still waiting for a submission.
type PinResponse struct {
	Pin    string         `json:"pin"`
	Result map[string]any `json:"result"`
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}
