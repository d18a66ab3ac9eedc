// Package wire defines the HTTP payloads exchanged with places and editors.
//
// Field names are PascalCase on the wire because the in-game agent reads them
// that way.
package wire

// Job is one script delivered to a place.
type Job struct {
	// File identifies the editor file the code came from.
	File string `json:"File"`
	// Code is the source to run.
	Code string `json:"Code"`
}

// DrainResponse is the GET /api/receive body when jobs are delivered.
type DrainResponse struct {
	Jobs []Job `json:"Jobs"`
}

// MismatchResponse is the GET /api/receive body when the poll is not for the
// current target. The place retries with the advertised target.
type MismatchResponse struct {
	Error         string `json:"Error"`
	TargetContext string `json:"TargetContext"`
	// TargetPlaceID is null when no place is targeted.
	TargetPlaceID *int64 `json:"TargetPlaceId"`
}

// Place is a registry entry as returned by GET /api/places.
type Place struct {
	PlaceID        int64    `json:"PlaceId"`
	Name           string   `json:"Name"`
	TargetContext  string   `json:"TargetContext"`
	ActiveContexts []string `json:"ActiveContexts"`
}

// StatusResponse is the GET /api/status body.
type StatusResponse struct {
	TargetContext string `json:"TargetContext"`
}

// ContextsResponse is the GET /api/contexts body.
type ContextsResponse struct {
	ActiveContexts []string `json:"ActiveContexts"`
}

// StatusReport is the POST /api/status body.
//
// Every field is optional on the wire. Missing PlaceName keeps the current
// name, missing Context means Edit and missing Active means active.
type StatusReport struct {
	PlaceID   *int64 `json:"PlaceId"`
	PlaceName string `json:"PlaceName"`
	Context   string `json:"Context"`
	Active    *bool  `json:"Active"`
}

// DisconnectRequest is the POST /api/disconnect body.
type DisconnectRequest struct {
	PlaceID *int64 `json:"PlaceId"`
}

// Ack acknowledges a push from a place.
type Ack struct {
	Success bool `json:"Success"`
}

// ErrorResponse is the body of every non-2xx editor API response.
type ErrorResponse struct {
	Error string `json:"Error"`
	// Code is the bridge error code when one applies.
	Code string `json:"Code,omitempty"`
}
