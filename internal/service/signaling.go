package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/chat"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/metrics"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/presence"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/registry"
)

var (
	// ErrPublisherActive indicates a second publish attempt while a
	// session is live
	ErrPublisherActive = errors.New("another publisher is active")

	// ErrNotPublisher indicates a stop request from a connection that does
	// not hold the session
	ErrNotPublisher = errors.New("connection is not the publisher")
)

// Sender is the outbound side of the transport. Implemented by the hub.
type Sender interface {
	SendToClient(clientID string, message []byte)
	Broadcast(message []byte)
}

// Service routes signaling between the single publisher and its viewers,
// and orchestrates connect/disconnect lifecycle across the registry,
// presence tracker and chat log. All session transitions are serialized
// under one lock.
type Service struct {
	cfg      *config.Config
	logger   logrus.FieldLogger
	metrics  metrics.Collector
	sender   Sender
	registry *registry.Registry
	presence *presence.Tracker
	chatLog  *chat.Log
	resolver presence.Resolver

	// Stream session state. publisherID is empty when no session is
	// active. Guarded by mu.
	mu          sync.Mutex
	publisherID string
	botCancel   context.CancelFunc
}

// New creates the signaling service. Every dependency is injected so
// independent instances can run side by side in tests.
func New(cfg *config.Config, logger logrus.FieldLogger, m metrics.Collector, sender Sender, resolver presence.Resolver) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		sender:   sender,
		registry: registry.New(),
		presence: presence.New(),
		chatLog:  chat.NewLog(cfg.Chat.HistorySize),
		resolver: resolver,
	}
}

// Registry exposes the connection registry for status reporting
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Presence exposes the presence tracker for status reporting
func (s *Service) Presence() *presence.Tracker {
	return s.presence
}

// SessionActive reports whether a publishing session is live and who holds it
func (s *Service) SessionActive() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publisherID, s.publisherID != ""
}

// startPublishing assigns the publisher role, activates the session and
// announces availability to every viewer. First publisher wins; a second
// attempt is denied explicitly and the live session is untouched.
func (s *Service) startPublishing(connID string) {
	s.mu.Lock()
	if s.publisherID == connID {
		// Duplicate start from the live publisher is a no-op
		s.mu.Unlock()
		return
	}
	if s.publisherID != "" {
		current := s.publisherID
		s.mu.Unlock()
		s.metrics.PublishDenied()
		s.logger.WithFields(logrus.Fields{
			"client_id": connID,
			"publisher": current,
		}).Info("Publish attempt denied, session already active")
		s.sendTo(connID, model.NewPublishDenied("another publisher is active"))
		return
	}

	if err := s.registry.SetRole(connID, model.RolePublisher); err != nil {
		s.mu.Unlock()
		s.metrics.PublishDenied()
		s.sendTo(connID, model.NewPublishDenied("connection already holds a role"))
		return
	}

	s.publisherID = connID

	// Bot task lifetime is bound to the session
	if s.cfg.Chat.Bot.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		s.botCancel = cancel
		bot := chat.NewBot(s.cfg.Chat.Bot, func(author, body string) {
			s.postChat(author, body, "", "bot")
		})
		go bot.Run(ctx)
	}
	s.mu.Unlock()

	s.logger.WithField("client_id", connID).Info("Publishing started")

	announcement := model.NewStreamAvailable(connID)
	for _, viewerID := range s.registry.AllOfRole(model.RoleViewer) {
		s.sendTo(viewerID, announcement)
	}
}

// stopPublishing ends the session if connID holds it. Viewers are told the
// stream ended.
func (s *Service) stopPublishing(connID string) error {
	s.mu.Lock()
	if s.publisherID != connID {
		s.mu.Unlock()
		return ErrNotPublisher
	}
	s.publisherID = ""
	if s.botCancel != nil {
		s.botCancel()
		s.botCancel = nil
	}
	s.mu.Unlock()

	s.logger.WithField("client_id", connID).Info("Publishing stopped")

	ended := model.NewStreamEnded()
	for _, viewerID := range s.registry.AllOfRole(model.RoleViewer) {
		s.sendTo(viewerID, ended)
	}
	return nil
}

// joinAsViewer assigns the viewer role, registers presence, broadcasts the
// updated stats and catches the late joiner up on any active session.
func (s *Service) joinAsViewer(connID, displayName string) {
	conn, ok := s.registry.Lookup(connID)
	if !ok {
		return
	}

	if err := s.registry.SetRole(connID, model.RoleViewer); err != nil {
		s.sendTo(connID, model.NewErrorOut("role already assigned"))
		return
	}

	s.presence.Join(connID, displayName, conn.RemoteAddr, s.resolver)
	s.metrics.ViewerJoined()

	s.logger.WithFields(logrus.Fields{
		"client_id":    connID,
		"display_name": displayName,
	}).Info("Viewer joined")

	s.broadcastStats()

	// Late-join catch-up
	if publisherID, active := s.SessionActive(); active {
		s.sendTo(connID, model.NewStreamAvailable(publisherID))
	}
}

// relayOffer routes a viewer's offer to the current publisher. With no
// active publisher the offer is dropped; the viewer's own attempt will
// simply time out.
func (s *Service) relayOffer(fromID string, payload *model.OfferPayload) {
	publisherID, active := s.SessionActive()
	if !active {
		s.metrics.SignalDropped(model.EventOffer, "no_publisher")
		s.logger.WithField("client_id", fromID).Debug("Offer dropped, no active publisher")
		return
	}

	s.sendTo(publisherID, model.NewOfferOut(payload.SDPOffer, fromID))
	s.metrics.SignalRelayed(model.EventOffer)
}

// relayAnswer routes the publisher's answer to exactly one viewer
func (s *Service) relayAnswer(fromID string, payload *model.AnswerPayload) {
	if _, ok := s.registry.Lookup(payload.ViewerID); !ok {
		s.metrics.SignalDropped(model.EventAnswer, "target_gone")
		s.logger.WithFields(logrus.Fields{
			"client_id": fromID,
			"viewer_id": payload.ViewerID,
		}).Debug("Answer dropped, viewer gone")
		return
	}

	s.sendTo(payload.ViewerID, model.NewAnswerOut(payload.SDPAnswer))
	s.metrics.SignalRelayed(model.EventAnswer)
}

// relayICECandidate routes a candidate to its target if live
func (s *Service) relayICECandidate(fromID string, payload *model.ICECandidatePayload) {
	if _, ok := s.registry.Lookup(payload.TargetID); !ok {
		s.metrics.SignalDropped(model.EventICECandidate, "target_gone")
		return
	}

	s.sendTo(payload.TargetID, model.NewICECandidateOut(payload.Candidate, fromID))
	s.metrics.SignalRelayed(model.EventICECandidate)
}

// postChat stores a message and fans it out to every connection. Chat is
// independent of streaming state.
func (s *Service) postChat(author, body, id, source string) {
	msg := s.chatLog.Post(author, body, id)
	s.metrics.ChatMessagePosted(source)
	s.broadcastJSON(model.NewChatMessageOut(msg))
}

// sendHistory replies with the bounded chat log
func (s *Service) sendHistory(connID string) {
	s.sendTo(connID, model.NewChatHistoryOut(s.chatLog.History()))
}

// broadcastStats sends the current viewer stats to every connection
func (s *Service) broadcastStats() {
	count, viewers := s.presence.Snapshot()
	s.broadcastJSON(model.NewViewerStats(count, viewers))
}

func (s *Service) sendTo(connID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal outbound event")
		return
	}
	s.sender.SendToClient(connID, data)
}

func (s *Service) broadcastJSON(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal broadcast event")
		return
	}
	s.sender.Broadcast(data)
}
