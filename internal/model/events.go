package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event types.
const (
	EventStartPublishing    = "start-publishing"
	EventStopPublishing     = "stop-publishing"
	EventJoinAsViewer       = "join-as-viewer"
	EventOffer              = "offer"
	EventAnswer             = "answer"
	EventICECandidate       = "ice-candidate"
	EventChatPost           = "chat-post"
	EventChatHistoryRequest = "chat-history-request"
)

// Outbound event types.
const (
	EventStreamAvailable = "stream-available"
	EventStreamEnded     = "stream-ended"
	EventViewerStats     = "viewer-stats"
	EventChatMessage     = "chat-message"
	EventChatHistory     = "chat-history"
	EventPublishDenied   = "publish-denied"
	EventError           = "error"
)

// Decode errors. ErrUnknownEvent and ErrMissingField both mean the message
// is discarded and the sender gets a generic error event.
var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrMissingField = errors.New("missing required field")
)

// JoinAsViewerPayload carries the viewer's self-declared display name.
type JoinAsViewerPayload struct {
	DisplayName string `json:"displayName"`
}

// OfferPayload carries an opaque SDP offer from a viewer.
type OfferPayload struct {
	SDPOffer json.RawMessage `json:"sdpOffer"`
}

// AnswerPayload carries an opaque SDP answer from the publisher to one viewer.
type AnswerPayload struct {
	SDPAnswer json.RawMessage `json:"sdpAnswer"`
	ViewerID  string          `json:"viewerId"`
}

// ICECandidatePayload carries an opaque ICE candidate to a specific peer.
type ICECandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	TargetID  string          `json:"targetId"`
}

// ChatPostPayload carries a chat message. ID is optional; the server assigns
// one when absent.
type ChatPostPayload struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	ID     string `json:"id,omitempty"`
}

// Inbound is the decoded form of one client message. Exactly one payload
// field is set, matching Type.
type Inbound struct {
	Type         string
	JoinAsViewer *JoinAsViewerPayload
	Offer        *OfferPayload
	Answer       *AnswerPayload
	ICECandidate *ICECandidatePayload
	ChatPost     *ChatPostPayload
}

// DecodeInbound parses a raw client message into its tagged variant. Field
// presence is checked here, once, so handlers downstream never see a
// half-formed payload.
func DecodeInbound(data []byte) (*Inbound, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	in := &Inbound{Type: head.Type}

	switch head.Type {
	case EventStartPublishing, EventStopPublishing, EventChatHistoryRequest:
		return in, nil

	case EventJoinAsViewer:
		var p JoinAsViewerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", head.Type, err)
		}
		if p.DisplayName == "" {
			return nil, fmt.Errorf("%w: displayName", ErrMissingField)
		}
		in.JoinAsViewer = &p
		return in, nil

	case EventOffer:
		var p OfferPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", head.Type, err)
		}
		if len(p.SDPOffer) == 0 {
			return nil, fmt.Errorf("%w: sdpOffer", ErrMissingField)
		}
		in.Offer = &p
		return in, nil

	case EventAnswer:
		var p AnswerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", head.Type, err)
		}
		if len(p.SDPAnswer) == 0 {
			return nil, fmt.Errorf("%w: sdpAnswer", ErrMissingField)
		}
		if p.ViewerID == "" {
			return nil, fmt.Errorf("%w: viewerId", ErrMissingField)
		}
		in.Answer = &p
		return in, nil

	case EventICECandidate:
		var p ICECandidatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", head.Type, err)
		}
		if len(p.Candidate) == 0 {
			return nil, fmt.Errorf("%w: candidate", ErrMissingField)
		}
		if p.TargetID == "" {
			return nil, fmt.Errorf("%w: targetId", ErrMissingField)
		}
		in.ICECandidate = &p
		return in, nil

	case EventChatPost:
		var p ChatPostPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", head.Type, err)
		}
		if p.Author == "" {
			return nil, fmt.Errorf("%w: author", ErrMissingField)
		}
		if p.Body == "" {
			return nil, fmt.Errorf("%w: body", ErrMissingField)
		}
		in.ChatPost = &p
		return in, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, head.Type)
	}
}
