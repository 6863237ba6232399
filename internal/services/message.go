package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, producer queue.Publisher, logger *logger.Logger) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

type SendMessageRequest struct {
	ReceiverID string  `json:"receiverId" binding:"required"`
	Text       string  `json:"text" binding:"required"`
	ImageURL   *string `json:"imageUrl"`
}

func (s *MessageService) SendMessage(ctx context.Context, senderID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	receiverID, err := parseID(req.ReceiverID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Text:       req.Text,
		ImageURL:   req.ImageURL,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, receiver.ID.String(), queue.EventMessageSent, queue.MessageEventData{
		MessageID:  message.ID.String(),
		SenderID:   senderID.String(),
		ReceiverID: receiver.ID.String(),
	})
	return message, nil
}

// GetThread returns the conversation with peerID oldest first and marks the
// peer's messages to the viewer as read.
func (s *MessageService) GetThread(ctx context.Context, viewerID uuid.UUID, peerID string) ([]*models.Message, error) {
	peer, err := uuid.Parse(peerID)
	if err != nil {
		return []*models.Message{}, nil
	}

	if _, err := s.messageRepo.MarkRead(ctx, peer, viewerID); err != nil {
		return nil, err
	}
	return s.messageRepo.Thread(ctx, viewerID, peer)
}

// GetConversations lists one entry per peer, most recent conversation first.
// Peers whose account no longer exists are skipped.
func (s *MessageService) GetConversations(ctx context.Context, viewerID uuid.UUID) ([]*models.Conversation, error) {
	peerIDs, err := s.messageRepo.PeerIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	peers, err := s.userRepo.GetByIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.messageRepo.UnreadCounts(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	conversations := make([]*models.Conversation, 0, len(peerIDs))
	for _, peerID := range peerIDs {
		peer, ok := peers[peerID]
		if !ok {
			continue
		}

		conversation := &models.Conversation{User: peer, UnreadCount: unread[peerID]}
		last, err := s.messageRepo.LastBetween(ctx, viewerID, peerID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			conversation.LastMessage = &last.Text
			conversation.LastMessageTime = &last.CreatedAt
		}
		conversations = append(conversations, conversation)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessageTime, conversations[j].LastMessageTime
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return conversations, nil
}
