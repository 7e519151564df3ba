package site

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/pkg/api"
)

// CommentInput is a reader's comment form.
type CommentInput struct {
	Name    string `json:"name" form:"name" binding:"required,max=100"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Comment string `json:"comment" form:"comment" binding:"required,min=10,max=5000"`
}

// ReactInput names the reaction a reader clicked.
type ReactInput struct {
	Type string `json:"type" form:"type" binding:"required,oneof=up down"`
}

// SubscribeInput is the newsletter form.
type SubscribeInput struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// postID resolves a published post slug to its id.
func (s *Service) postID(ctx context.Context, slug string) (string, error) {
	p, err := s.store.Posts.GetPostBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// Comments lists the comments under an article, oldest first.
func (s *Service) Comments(ctx context.Context, l api.Lang, slug, readerID string) ([]CommentView, error) {
	id, err := s.postID(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.comments(ctx, l, id, readerID)
}

func (s *Service) comments(ctx context.Context, l api.Lang, postID, readerID string) ([]CommentView, error) {
	list, err := s.store.Comments.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]CommentView, 0, len(list))
	for _, c := range list {
		out = append(out, s.commentView(l, c, readerID))
	}
	return out, nil
}

// AddComment validates and stores a comment. Markup is stripped from the name
// and body, and validation runs again on what remains.
func (s *Service) AddComment(ctx context.Context, l api.Lang, slug, readerID string, in CommentInput) (CommentView, error) {
	if err := s.validate.Struct(in); err != nil {
		return CommentView{}, s.invalid(err)
	}
	in.Name = s.cleanText(in.Name)
	in.Comment = s.cleanText(in.Comment)
	if err := s.validate.Struct(in); err != nil {
		return CommentView{}, s.invalid(err)
	}
	id, err := s.postID(ctx, slug)
	if err != nil {
		return CommentView{}, err
	}
	c, err := s.store.Comments.AddComment(ctx, api.Comment{
		PostID:   id,
		Name:     in.Name,
		Email:    in.Email,
		Body:     in.Comment,
		ReaderID: readerID,
	})
	if err != nil {
		return CommentView{}, err
	}
	s.log.Info("comment added", zap.String("post", slug), zap.String("comment", c.ID))
	return s.commentView(l, c, readerID), nil
}

// DeleteComment removes a comment the reader wrote.
func (s *Service) DeleteComment(ctx context.Context, commentID, readerID string) error {
	if err := s.store.Comments.DeleteComment(ctx, commentID, readerID); err != nil {
		return err
	}
	s.log.Info("comment deleted", zap.String("comment", commentID))
	return nil
}

// Reactions returns the counts of an article and the reader's own reaction.
func (s *Service) Reactions(ctx context.Context, slug, readerID string) (ReactionState, error) {
	id, err := s.postID(ctx, slug)
	if err != nil {
		return ReactionState{}, err
	}
	return s.reactionState(ctx, id, readerID)
}

func (s *Service) reactionState(ctx context.Context, postID, readerID string) (ReactionState, error) {
	counts, err := s.store.Reactions.ReactionCounts(ctx, postID)
	if err != nil {
		return ReactionState{}, fmt.Errorf("reaction counts: %w", err)
	}
	st := ReactionState{ReactionCounts: counts}
	if readerID != "" {
		if st.UserReaction, err = s.store.Reactions.UserReaction(ctx, postID, readerID); err != nil {
			return ReactionState{}, fmt.Errorf("user reaction: %w", err)
		}
	}
	return st, nil
}

// React records the reader's reaction. Clicking the reaction already chosen
// removes it; clicking the other one switches.
func (s *Service) React(ctx context.Context, slug, readerID string, in ReactInput) (ReactionState, error) {
	typ, ok := api.ParseReaction(in.Type)
	if !ok {
		return ReactionState{}, s.invalid(errors.New("reaction must be up or down"))
	}
	if readerID == "" {
		return ReactionState{}, s.invalid(errors.New("missing reader"))
	}
	id, err := s.postID(ctx, slug)
	if err != nil {
		return ReactionState{}, err
	}
	var st ReactionState
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		cur, err := s.store.Reactions.UserReaction(ctx, id, readerID)
		if err != nil {
			return err
		}
		if cur == typ {
			err = s.store.Reactions.RemoveReaction(ctx, id, readerID)
		} else {
			err = s.store.Reactions.SetReaction(ctx, id, readerID, typ)
		}
		if err != nil {
			return err
		}
		st, err = s.reactionState(ctx, id, readerID)
		return err
	})
	if err != nil {
		return ReactionState{}, err
	}
	return st, nil
}

// Unreact clears the reader's reaction.
func (s *Service) Unreact(ctx context.Context, slug, readerID string) (ReactionState, error) {
	id, err := s.postID(ctx, slug)
	if err != nil {
		return ReactionState{}, err
	}
	if err := s.store.Reactions.RemoveReaction(ctx, id, readerID); err != nil {
		return ReactionState{}, err
	}
	return s.reactionState(ctx, id, readerID)
}

func (s *Service) Subscribe(ctx context.Context, in SubscribeInput) (api.SubscribeResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return api.SubscribeResult{}, s.invalid(err)
	}
	res, err := s.store.Newsletter.Subscribe(ctx, in.Email)
	if err != nil {
		return api.SubscribeResult{}, err
	}
	s.log.Info("newsletter subscribe", zap.Bool("already", res.AlreadySubscribed))
	return res, nil
}

func (s *Service) Unsubscribe(ctx context.Context, in SubscribeInput) (api.SubscribeResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return api.SubscribeResult{}, s.invalid(err)
	}
	return s.store.Newsletter.Unsubscribe(ctx, in.Email)
}

// Subscribers lists newsletter subscribers for the operator.
func (s *Service) Subscribers(ctx context.Context, activeOnly bool) ([]api.Subscriber, error) {
	return s.store.Newsletter.ListSubscribers(ctx, activeOnly)
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, db.ErrNotFound) }

// IsInvalid reports whether err was caused by bad input.
func IsInvalid(err error) bool { return errors.Is(err, db.ErrInvalid) }
