package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
)

// OnConnect registers a new connection. It stays unassigned until its
// first role-declaring event.
func (s *Service) OnConnect(connID, remoteAddr string) {
	if _, err := s.registry.Register(connID, remoteAddr); err != nil {
		s.logger.WithError(err).WithField("client_id", connID).Error("Connection registration failed")
		return
	}
	s.metrics.ClientConnected()
	s.logger.WithFields(logrus.Fields{
		"client_id":   connID,
		"remote_addr": remoteAddr,
	}).Info("Client connected")
}

// OnDisconnect tears a connection down across every component. It is
// idempotent and total: each step runs even when an earlier one fails,
// and a duplicate call finds nothing left to do.
func (s *Service) OnDisconnect(connID string) {
	conn, found := s.registry.Lookup(connID)

	if found && conn.Role == model.RolePublisher {
		if err := s.stopPublishing(connID); err != nil && !errors.Is(err, ErrNotPublisher) {
			s.logger.WithError(err).WithField("client_id", connID).Warn("Publisher teardown failed")
		}
	}

	if found && conn.Role == model.RoleViewer {
		if s.presence.Leave(connID) {
			s.metrics.ViewerLeft()
			s.broadcastStats()
		}
	}

	if s.registry.Unregister(connID) {
		s.metrics.ClientDisconnected()
		s.logger.WithField("client_id", connID).Info("Client disconnected")
	}
}

// OnMessage decodes one inbound event at the boundary and dispatches it.
// A failure here is contained to the sending connection: the message is
// discarded and the sender gets a generic error event.
func (s *Service) OnMessage(connID string, data []byte) {
	in, err := model.DecodeInbound(data)
	if err != nil {
		s.logger.WithError(err).WithField("client_id", connID).Debug("Discarding malformed message")
		s.sendTo(connID, model.NewErrorOut("invalid message"))
		return
	}

	s.metrics.MessageReceived(in.Type, len(data))

	switch in.Type {
	case model.EventStartPublishing:
		s.startPublishing(connID)

	case model.EventStopPublishing:
		if err := s.stopPublishing(connID); err != nil {
			s.sendTo(connID, model.NewErrorOut("not the active publisher"))
		}

	case model.EventJoinAsViewer:
		s.joinAsViewer(connID, in.JoinAsViewer.DisplayName)

	case model.EventOffer:
		s.relayOffer(connID, in.Offer)

	case model.EventAnswer:
		s.relayAnswer(connID, in.Answer)

	case model.EventICECandidate:
		s.relayICECandidate(connID, in.ICECandidate)

	case model.EventChatPost:
		s.postChat(in.ChatPost.Author, in.ChatPost.Body, in.ChatPost.ID, "client")

	case model.EventChatHistoryRequest:
		s.sendHistory(connID)
	}
}

// Close cancels any running session task
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.botCancel != nil {
		s.botCancel()
		s.botCancel = nil
	}
}
