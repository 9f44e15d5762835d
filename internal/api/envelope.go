// Package api is the gin-based HTTP dispatcher: request validation, the
// ring-then-device fallback path, and the {success, data, error} response
// envelope shared by every endpoint except /health.
package api

// Envelope is the stable JSON shape every endpoint but /health responds
// with. Both fields are always present (rather than omitted via
// omitempty) so a success response carries an explicit "error": null and
// an error response carries an explicit "data": null.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

func success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func fail(message string) Envelope {
	return Envelope{Success: false, Error: &message}
}
