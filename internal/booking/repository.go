package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
)

const (
	sessionColumns = `s.id, s.activity_id, s.coach_id, s.date, s.start_time, s.end_time,
		s.user_id, s.booked, s.booked_with_token, s.additions, s.created_at`
	groupColumns = `g.id, g.activity_id, g.coach_id, g.date, g.start_time, g.end_time,
		g.user_ids, g.token_user_ids, g.additions, g.created_at`

	sessionViewQuery = `
		SELECT ` + sessionColumns + `, a.name AS activity_name, c.name AS coach_name
		FROM sessions s
		JOIN activities a ON a.id = s.activity_id
		JOIN coaches c ON c.id = s.coach_id`
	groupViewQuery = `
		SELECT ` + groupColumns + `, a.name AS activity_name, c.name AS coach_name,
			a.capacity, cardinality(g.user_ids) AS count,
			cardinality(g.user_ids) >= a.capacity AS booked
		FROM group_sessions g
		JOIN activities a ON a.id = g.activity_id
		JOIN coaches c ON c.id = g.coach_id`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, s *Session) (*Session, error) {
	query := `
		INSERT INTO sessions AS s (activity_id, coach_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns

	var out Session
	err := r.db.GetContext(ctx, &out, query, s.ActivityID, s.CoachID, s.Date, s.StartTime, s.EndTime)
	if err != nil {
		return nil, apperr.StoreWrite("create session", err)
	}
	return &out, nil
}

func (r *repository) CreateGroupSession(ctx context.Context, g *GroupSession) (*GroupSession, error) {
	query := `
		INSERT INTO group_sessions AS g (activity_id, coach_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + groupColumns

	var out GroupSession
	err := r.db.GetContext(ctx, &out, query, g.ActivityID, g.CoachID, g.Date, g.StartTime, g.EndTime)
	if err != nil {
		return nil, apperr.StoreWrite("create group session", err)
	}
	return &out, nil
}

func (r *repository) GetSessionForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*Session, error) {
	var s Session
	err := sqlx.GetContext(ctx, q, &s, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1 FOR UPDATE`, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("session %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetGroupForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*GroupSession, error) {
	var g GroupSession
	err := sqlx.GetContext(ctx, q, &g, `SELECT `+groupColumns+` FROM group_sessions g WHERE g.id = $1 FOR UPDATE`, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("group session %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) SaveSession(ctx context.Context, q sqlx.ExtContext, s *Session) error {
	_, err := q.ExecContext(ctx, `
		UPDATE sessions
		SET user_id = $1, booked = $2, booked_with_token = $3, additions = $4
		WHERE id = $5
	`, s.UserID, s.Booked, s.BookedWithToken, s.Additions, s.ID)
	if err != nil {
		return apperr.StoreWrite(fmt.Sprintf("update session %d", s.ID), err)
	}
	return nil
}

func (r *repository) SaveGroup(ctx context.Context, q sqlx.ExtContext, g *GroupSession) error {
	_, err := q.ExecContext(ctx, `
		UPDATE group_sessions
		SET user_ids = $1, token_user_ids = $2, additions = $3
		WHERE id = $4
	`, g.UserIDs, g.TokenUserIDs, g.Additions, g.ID)
	if err != nil {
		return apperr.StoreWrite(fmt.Sprintf("update group session %d", g.ID), err)
	}
	return nil
}

func (r *repository) ListSessions(ctx context.Context, from, to time.Time) ([]SessionView, error) {
	out := []SessionView{}
	err := r.db.SelectContext(ctx, &out,
		sessionViewQuery+` WHERE s.date >= $1 AND s.date < $2 ORDER BY s.date, s.start_time`,
		from, to)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListUserSessions(ctx context.Context, userID int) ([]SessionView, error) {
	out := []SessionView{}
	err := r.db.SelectContext(ctx, &out,
		sessionViewQuery+` WHERE s.user_id = $1 AND s.booked ORDER BY s.date DESC, s.start_time DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListGroupSessions(ctx context.Context, from, to time.Time) ([]GroupSessionView, error) {
	out := []GroupSessionView{}
	err := r.db.SelectContext(ctx, &out,
		groupViewQuery+` WHERE g.date >= $1 AND g.date < $2 ORDER BY g.date, g.start_time`,
		from, to)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListUserGroupSessions(ctx context.Context, userID int) ([]GroupSessionView, error) {
	out := []GroupSessionView{}
	err := r.db.SelectContext(ctx, &out,
		groupViewQuery+` WHERE $1 = ANY(g.user_ids) ORDER BY g.date DESC, g.start_time DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
