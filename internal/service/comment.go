package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/queue"
	"github.com/iliyamo/game-catalog/internal/utils"
)

// CommentStore persists and lists comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByGame(ctx context.Context, gameID uint64) ([]*model.Comment, error)
}

// GameLookup resolves the game a comment thread belongs to.
type GameLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Game, error)
}

// EventPublisher announces new comments to other systems.
type EventPublisher interface {
	PublishCommentCreated(ctx context.Context, ev queue.CommentCreatedEvent) error
}

// Thread is what the game detail page shows: the game and its comments,
// newest first.
type Thread struct {
	Game     *model.Game
	Comments []*model.Comment
}

// publishTimeout bounds the best-effort comment.created publish.
const publishTimeout = 3 * time.Second

// Comments implements the comment submission workflow for a game page.
type Comments struct {
	games      GameLookup
	comments   CommentStore
	publisher  EventPublisher
	bcryptCost int
	now        func() time.Time
	log        *slog.Logger
}

// CommentsOption customizes a Comments service.
type CommentsOption func(*Comments)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CommentsOption {
	return func(s *Comments) { s.now = now }
}

// WithPublisher sets where comment.created events go.  Without it no
// events are published.
func WithPublisher(p EventPublisher) CommentsOption {
	return func(s *Comments) { s.publisher = p }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) CommentsOption {
	return func(s *Comments) { s.log = l }
}

// NewComments builds the service.  bcryptCost is used to hash the password
// visitors submit with a comment.
func NewComments(games GameLookup, comments CommentStore, bcryptCost int, opts ...CommentsOption) *Comments {
	s := &Comments{
		games:      games,
		comments:   comments,
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thread loads a game and its comments.  The error wraps
// repository.ErrNotFound when the game does not exist.
func (s *Comments) Thread(ctx context.Context, gameID uint64) (*Thread, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", gameID, err)
	}
	list, err := s.comments.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list comments of game %d: %w", gameID, err)
	}
	return &Thread{Game: g, Comments: list}, nil
}

// Submit validates a form and stores it as a new comment on the game.
// The game is checked first, so a missing game wins over invalid input.
// Invalid input returns FieldErrors and persists nothing.
func (s *Comments) Submit(ctx context.Context, gameID uint64, form CommentForm) (*model.Comment, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", gameID, err)
	}
	in, ferrs := ValidateCommentForm(form)
	if ferrs != nil {
		return nil, ferrs
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash comment password: %w", err)
	}
	c := &model.Comment{
		GameID:       g.ID,
		Nickname:     in.Nickname,
		Email:        in.Email,
		PasswordHash: hash,
		Text:         in.Text,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.publish(ctx, g, c)
	return c, nil
}

func (s *Comments) publish(ctx context.Context, g *model.Game, c *model.Comment) {
	if s.publisher == nil {
		return
	}
	ev := queue.CommentCreatedEvent{
		CommentID: c.ID,
		GameID:    g.ID,
		GameTitle: g.Title,
		Nickname:  c.Nickname,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	// The comment is already stored; a slow or gone client must not cancel
	// the event, and a slow broker must not hold the response.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishCommentCreated(pctx, ev); err != nil {
		s.log.Warn("publish comment.created failed", "comment_id", c.ID, "game_id", g.ID, "error", err)
	}
}
