package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateSession(ctx context.Context, s *Session) (*Session, error)
	CreateGroupSession(ctx context.Context, g *GroupSession) (*GroupSession, error)

	// The ForUpdate reads row-lock the booking inside q's transaction.
	GetSessionForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*Session, error)
	GetGroupForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*GroupSession, error)
	SaveSession(ctx context.Context, q sqlx.ExtContext, s *Session) error
	SaveGroup(ctx context.Context, q sqlx.ExtContext, g *GroupSession) error

	ListSessions(ctx context.Context, from, to time.Time) ([]SessionView, error)
	ListUserSessions(ctx context.Context, userID int) ([]SessionView, error)
	ListGroupSessions(ctx context.Context, from, to time.Time) ([]GroupSessionView, error)
	ListUserGroupSessions(ctx context.Context, userID int) ([]GroupSessionView, error)
}
