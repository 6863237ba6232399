package workers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

// Subscriber is the consuming side of the event bus.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(context.Context, queue.Message) error) error
	Close() error
}

// ReconcileWorker follows the domain event stream and recounts the
// denormalized counters each event touches.
type ReconcileWorker struct {
	reconciler *services.Reconciler
	consumer   Subscriber
	logger     *logger.Logger
}

func NewReconcileWorker(reconciler *services.Reconciler, consumer Subscriber, logger *logger.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		reconciler: reconciler,
		consumer:   consumer,
		logger:     logger,
	}
}

// Start blocks until ctx is cancelled or the consumer fails.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting reconcile worker...")
	return w.consumer.Subscribe(ctx, w.HandleMessage)
}

func (w *ReconcileWorker) Stop() error {
	w.logger.Info("Stopping reconcile worker...")
	return w.consumer.Close()
}

func (w *ReconcileWorker) HandleMessage(ctx context.Context, msg queue.Message) error {
	event, err := queue.DecodeEvent(msg.Value)
	if err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"timestamp":  event.Timestamp,
	}).Debug("Processing event")

	switch event.Type {
	case queue.EventPostCreated, queue.EventPostDeleted:
		return w.handlePost(ctx, event)
	case queue.EventFollowCreated, queue.EventFollowDeleted:
		return w.handleFollow(ctx, event)
	case queue.EventReactionChanged:
		var data queue.ReactionEventData
		if err := event.DecodeData(&data); err != nil {
			return err
		}
		return w.recountPost(ctx, data.PostID)
	case queue.EventCommentCreated:
		var data queue.CommentEventData
		if err := event.DecodeData(&data); err != nil {
			return err
		}
		return w.recountPost(ctx, data.PostID)
	case queue.EventReelLiked, queue.EventReelUnliked:
		var data queue.ReelEventData
		if err := event.DecodeData(&data); err != nil {
			return err
		}
		reelID, err := parseEventID("reel_id", data.ReelID)
		if err != nil {
			return err
		}
		return w.reconciler.RecountReel(ctx, reelID)
	default:
		// nothing to recount
		return nil
	}
}

func (w *ReconcileWorker) handlePost(ctx context.Context, event *queue.RawEvent) error {
	var data queue.PostEventData
	if err := event.DecodeData(&data); err != nil {
		return err
	}
	authorID, err := parseEventID("author_id", data.AuthorID)
	if err != nil {
		return err
	}
	if event.Type == queue.EventPostDeleted {
		// counts of the deleted post's edges are gone with it; only the author moves
		return w.reconciler.RecountUser(ctx, authorID)
	}
	if err := w.recountPost(ctx, data.PostID); err != nil {
		return err
	}
	return w.reconciler.RecountUser(ctx, authorID)
}

func (w *ReconcileWorker) handleFollow(ctx context.Context, event *queue.RawEvent) error {
	var data queue.FollowEventData
	if err := event.DecodeData(&data); err != nil {
		return err
	}
	followerID, err := parseEventID("follower_id", data.FollowerID)
	if err != nil {
		return err
	}
	followingID, err := parseEventID("following_id", data.FollowingID)
	if err != nil {
		return err
	}

	w.reconciler.InvalidateFollowing(ctx, followerID)

	if err := w.reconciler.RecountUser(ctx, followerID); err != nil {
		return err
	}
	return w.reconciler.RecountUser(ctx, followingID)
}

func (w *ReconcileWorker) recountPost(ctx context.Context, id string) error {
	postID, err := parseEventID("post_id", id)
	if err != nil {
		return err
	}
	return w.reconciler.RecountPost(ctx, postID)
}

func parseEventID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q in event data: %w", field, value, err)
	}
	return id, nil
}
