package session

import (
	"context"
	"fmt"
	"strings"
)

// AddComment appends a comment to an item's thread, creating the thread on
// first use. Comments are append-only; there is no edit or delete.
func (s *Store) AddComment(ctx context.Context, params CommentParams) (comment Comment, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddComment", "session_id", params.SessionID, "item_id", params.ItemID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add comment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("comment_id", comment.ID).InfoContext(ctx, "comment added")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.ItemID) == "" {
		vErr.add("itemId", "item id is required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if strings.TrimSpace(params.Text) == "" {
		vErr.add("comment", "comment text is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		return
	}

	comment = Comment{
		ID:        s.idGenerator(),
		UserID:    params.UserID,
		Text:      params.Text,
		Timestamp: s.now().UTC(),
	}
	current.Comments[params.ItemID] = append(current.Comments[params.ItemID], comment)

	s.commitLocked(Event{
		Name:      EventCommentAdded,
		SessionID: current.ID,
		Payload: CommentAddedPayload{
			SessionID: current.ID,
			ItemID:    params.ItemID,
			Comment:   comment,
		},
	})
	return comment, nil
}
