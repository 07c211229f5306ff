package service

import (
	"context"

	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/logger"
	"github.com/jmadden/clubhouse/internal/store"
)

// MessageService posts, lists and deletes dashboard messages.
// Authorization (authenticated author, admin delete) is enforced by the
// transport layer before these are reached.
type MessageService struct {
	store store.Storage
}

func NewMessageService(st store.Storage) *MessageService {
	return &MessageService{store: st}
}

func (s *MessageService) Post(ctx context.Context, authorID int64, title, content string) (*domain.Message, error) {
	msg := &domain.Message{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.store.Messages.Post(ctx, msg); err != nil {
		return nil, domain.ErrStore("postMessage", err)
	}

	logger.WithCtx(ctx).Info().
		Int64("message_id", msg.ID).
		Int64("author_id", authorID).
		Msg("message posted")

	return msg, nil
}

func (s *MessageService) List(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	msgs, err := s.store.Messages.ListWithAuthor(ctx)
	if err != nil {
		return nil, domain.ErrStore("listMessagesWithAuthor", err)
	}
	return msgs, nil
}

// Delete removes a message by id. A missing id is a no-op.
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Messages.DeleteByID(ctx, id); err != nil {
		return domain.ErrStore("deleteMessageById", err)
	}

	logger.WithCtx(ctx).Info().Int64("message_id", id).Msg("message deleted")
	return nil
}
