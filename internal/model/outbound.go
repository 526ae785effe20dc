package model

import "encoding/json"

// StreamAvailable announces an active publisher to viewers.
type StreamAvailable struct {
	Type        string `json:"type"`
	PublisherID string `json:"publisherId"`
}

// StreamEnded announces that the publisher's session is over.
type StreamEnded struct {
	Type string `json:"type"`
}

// OfferOut relays a viewer's SDP offer to the publisher.
type OfferOut struct {
	Type     string          `json:"type"`
	SDPOffer json.RawMessage `json:"sdpOffer"`
	ViewerID string          `json:"viewerId"`
}

// AnswerOut relays the publisher's SDP answer to one viewer.
type AnswerOut struct {
	Type      string          `json:"type"`
	SDPAnswer json.RawMessage `json:"sdpAnswer"`
}

// ICECandidateOut relays an ICE candidate to its target.
type ICECandidateOut struct {
	Type      string          `json:"type"`
	Candidate json.RawMessage `json:"candidate"`
	SourceID  string          `json:"sourceId"`
}

// ViewerStats carries the current viewer count and roster.
type ViewerStats struct {
	Type    string       `json:"type"`
	Count   int          `json:"count"`
	Viewers []ViewerInfo `json:"viewers"`
}

// ChatMessageOut wraps a single stored chat message.
type ChatMessageOut struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

// ChatHistoryOut carries the bounded chat log, oldest first.
type ChatHistoryOut struct {
	Type     string        `json:"type"`
	Messages []ChatMessage `json:"messages"`
}

// PublishDenied tells a would-be publisher why its request was refused.
type PublishDenied struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ErrorOut is the generic failure event for malformed or rejected input.
type ErrorOut struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewStreamAvailable(publisherID string) StreamAvailable {
	return StreamAvailable{Type: EventStreamAvailable, PublisherID: publisherID}
}

func NewStreamEnded() StreamEnded {
	return StreamEnded{Type: EventStreamEnded}
}

func NewOfferOut(sdp json.RawMessage, viewerID string) OfferOut {
	return OfferOut{Type: EventOffer, SDPOffer: sdp, ViewerID: viewerID}
}

func NewAnswerOut(sdp json.RawMessage) AnswerOut {
	return AnswerOut{Type: EventAnswer, SDPAnswer: sdp}
}

func NewICECandidateOut(candidate json.RawMessage, sourceID string) ICECandidateOut {
	return ICECandidateOut{Type: EventICECandidate, Candidate: candidate, SourceID: sourceID}
}

func NewViewerStats(count int, viewers []ViewerInfo) ViewerStats {
	return ViewerStats{Type: EventViewerStats, Count: count, Viewers: viewers}
}

func NewChatMessageOut(msg ChatMessage) ChatMessageOut {
	return ChatMessageOut{Type: EventChatMessage, Message: msg}
}

func NewChatHistoryOut(messages []ChatMessage) ChatHistoryOut {
	return ChatHistoryOut{Type: EventChatHistory, Messages: messages}
}

func NewPublishDenied(reason string) PublishDenied {
	return PublishDenied{Type: EventPublishDenied, Reason: reason}
}

func NewErrorOut(reason string) ErrorOut {
	return ErrorOut{Type: EventError, Reason: reason}
}
