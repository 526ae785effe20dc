package model

import "time"

// Role is a connection's declared part in the stream. A connection starts
// Unassigned and transitions at most once.
type Role int

const (
	RoleUnassigned Role = iota
	RolePublisher
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RolePublisher:
		return "publisher"
	case RoleViewer:
		return "viewer"
	default:
		return "unassigned"
	}
}

// ViewerInfo is the presence record for one viewer-role connection.
type ViewerInfo struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	CountryCode  string `json:"countryCode"`
	SourceAddr   string `json:"-"`
}

// ChatMessage is one stored chat entry. Timestamp is assigned when the
// server accepts the message, not when the client sent it.
type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}
