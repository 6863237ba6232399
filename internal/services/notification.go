package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
)

const notificationListLimit = 50

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, userRepo *repository.UserRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// Notify records a notification for recipient. Notifications are a side
// effect: failures are logged and self-notifications are dropped.
func (s *NotificationService) Notify(ctx context.Context, recipient uuid.UUID, actor *models.User, kind string, postID *uuid.UUID, text string) {
	if recipient == actor.ID {
		return
	}

	notification := &models.Notification{
		UserID:  recipient,
		Type:    kind,
		ActorID: actor.ID,
		PostID:  postID,
		Text:    text,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"recipient": recipient,
			"type":      kind,
		}).Error("Failed to create notification")
	}
}

// NotifyMentions notifies every existing user named as @username in text.
func (s *NotificationService) NotifyMentions(ctx context.Context, actor *models.User, postID uuid.UUID, text string) {
	usernames := ParseMentions(text)
	if len(usernames) == 0 {
		return
	}

	users, err := s.userRepo.GetByUsernames(ctx, usernames)
	if err != nil {
		s.logger.WithError(err).Error("Failed to resolve mentions")
		return
	}
	for _, user := range users {
		s.Notify(ctx, user.ID, actor, models.NotificationMention, &postID,
			fmt.Sprintf("%s mentioned you", actor.DisplayName))
	}
}

// ParseMentions returns the distinct usernames mentioned in text, in order of
// first appearance.
func ParseMentions(text string) []string {
	var usernames []string
	seen := make(map[string]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(match[1], ".")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		usernames = append(usernames, name)
	}
	return usernames
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]uuid.UUID, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := s.userRepo.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	for _, n := range notifications {
		n.Actor = actors[n.ActorID]
	}
	return notifications, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	updated, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"updated": updated,
	}).Info("Notifications marked read")
	return nil
}
