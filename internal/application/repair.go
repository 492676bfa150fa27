package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

type RepairCommand struct {
	Participant    identity.Participant
	Peer           identity.Participant
	ConversationID string
}

// Repair rebuilds the participant's summary of a conversation from its
// message log. It restores summaries lost to a partial send.
func (s *Service) Repair(ctx context.Context, cmd RepairCommand) (*domain.ConversationSummary, error) {
	if err := requireIdentity(cmd.Participant, "participant"); err != nil {
		return nil, err
	}
	if err := requireIdentity(cmd.Peer, "peer"); err != nil {
		return nil, err
	}
	if cmd.ConversationID == "" {
		return nil, domain.ErrInvalidInput
	}

	msgs, _, err := s.messages.ListAll(ctx, cmd.ConversationID)
	if err != nil {
		return nil, err
	}

	involved := false
	peerName := cmd.Peer.DisplayName
	for _, m := range msgs {
		if m.SenderID == cmd.Participant.ID || m.SenderID == cmd.Peer.ID {
			involved = true
		}
		if m.SenderID == cmd.Peer.ID && m.SenderDisplayName != "" {
			peerName = m.SenderDisplayName
		}
	}
	if !involved {
		return nil, domain.ErrConversationNotFound
	}
	if peerName == "" {
		peerName = s.lookupName(ctx, cmd.Peer)
	}

	latest, _ := domain.LatestByTimestamp(msgs)
	summary := domain.ConversationSummary{
		ConversationID:  cmd.ConversationID,
		PeerID:          cmd.Peer.ID,
		PeerDisplayName: peerName,
		LatestMessage:   domain.LatestFrom(latest),
	}
	if err := s.index.UpsertSummary(ctx, cmd.Participant.ID, summary); err != nil {
		return nil, err
	}
	summary = s.storedSummary(ctx, cmd.Participant.ID, summary)

	s.log.Info("Conversation summary repaired",
		zap.String("conversation_id", cmd.ConversationID),
		zap.String("participant_id", cmd.Participant.ID),
	)
	s.events.Emit(ctx, events.TypeConversationRepaired, cmd.ConversationID, events.RepairPayload{
		ConversationID: cmd.ConversationID,
		ParticipantID:  cmd.Participant.ID,
		PeerID:         cmd.Peer.ID,
	})
	return &summary, nil
}

// storedSummary returns the index entry as written, which may keep a read
// flag the rebuilt summary did not carry. It falls back to rebuilt when the
// index cannot be read back.
func (s *Service) storedSummary(ctx context.Context, participantID string, rebuilt domain.ConversationSummary) domain.ConversationSummary {
	index, _, err := s.index.ListConversations(ctx, participantID)
	if err != nil {
		return rebuilt
	}
	for _, entry := range index {
		if entry.ConversationID == rebuilt.ConversationID {
			return entry
		}
	}
	return rebuilt
}

func (s *Service) lookupName(ctx context.Context, p identity.Participant) string {
	if s.directory == nil || p.Email == "" {
		return ""
	}
	name, err := s.directory.DisplayName(ctx, p.Email)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		s.log.Warn("peer name lookup failed", zap.String("peer_id", p.ID), zap.Error(err))
	}
	return name
}
