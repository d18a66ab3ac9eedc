package wire

import "time"

// ExecuteRequest is the POST /editor/execute body.
type ExecuteRequest struct {
	Code string `json:"Code"`
	File string `json:"File"`
}

// QueuedJob describes a job accepted by POST /editor/execute.
type QueuedJob struct {
	ID            string    `json:"Id"`
	File          string    `json:"File"`
	Context       string    `json:"Context"`
	TargetPlaceID *int64    `json:"TargetPlaceId"`
	Bytes         int       `json:"Bytes"`
	QueuedAt      time.Time `json:"QueuedAt"`
}

// ExecuteResponse is the POST /editor/execute response body.
type ExecuteResponse struct {
	Job QueuedJob `json:"Job"`
}

// TargetPlaceRequest is the POST /editor/target/place body. A null or
// missing PlaceID clears the target.
type TargetPlaceRequest struct {
	PlaceID *int64 `json:"PlaceId"`
}

// TargetContextRequest is the POST /editor/target/context body.
type TargetContextRequest struct {
	Context string `json:"Context"`
}

// State is the full bridge state returned by the editor API and carried by
// UI events.
type State struct {
	TargetPlaceID     *int64         `json:"TargetPlaceId"`
	TargetPlaceName   string         `json:"TargetPlaceName"`
	TargetContext     string         `json:"TargetContext"`
	ActiveContexts    []string       `json:"ActiveContexts"`
	ShowContextSwitch bool           `json:"ShowContextSwitch"`
	Places            []Place        `json:"Places"`
	Queued            map[string]int `json:"Queued"`
}

// Event types sent on the /editor/events websocket.
const (
	EventPlaceChanged   = "place-changed"
	EventContextChanged = "context-changed"
	EventQueueCleared   = "queue-cleared"
	EventConnected      = "connected"
)

// Event is one UI notification pushed to editors.
type Event struct {
	Type string `json:"Type"`
	// State is set for place-changed and context-changed.
	State *State `json:"State,omitempty"`
	// Context is set for queue-cleared.
	Context string `json:"Context,omitempty"`
}
