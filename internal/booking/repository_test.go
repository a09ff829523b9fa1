package booking

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
)

func setupBookingMock(t *testing.T) (Repository, *sqlx.DB, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	return NewRepository(sqlxDB), sqlxDB, mock, func() { sqlxDB.Close() }
}

var (
	sessionCols = []string{"id", "activity_id", "coach_id", "date", "start_time", "end_time",
		"user_id", "booked", "booked_with_token", "additions", "created_at"}
	groupCols = []string{"id", "activity_id", "coach_id", "date", "start_time", "end_time",
		"user_ids", "token_user_ids", "additions", "created_at"}
)

func TestGetSessionForUpdate(t *testing.T) {
	repo, db, mock, close := setupBookingMock(t)
	defer close()

	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions s WHERE s.id = $1 FOR UPDATE")).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(12, 1, 2, day, "18:00:00", "19:00:00", 7, true, false,
				`[{"id":3,"name":"Protein Shake","price":"6"}]`, time.Now()))

	s, err := repo.GetSessionForUpdate(context.Background(), db, 12)
	require.NoError(t, err)
	assert.True(t, s.OwnedBy(7))
	require.Len(t, s.Additions, 1)
	assert.Equal(t, "Protein Shake", s.Additions[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionForUpdate_NotFound(t *testing.T) {
	repo, db, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery("FROM sessions").WithArgs(5).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSessionForUpdate(context.Background(), db, 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetGroupForUpdate(t *testing.T) {
	repo, db, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_sessions g WHERE g.id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(groupCols).
			AddRow(3, 1, 2, time.Now(), "09:00:00", "10:00:00", "{4,6}", "{6}",
				`[{"user_id":6,"items":[{"id":9,"name":"Towel","price":"5"}]}]`, time.Now()))

	g, err := repo.GetGroupForUpdate(context.Background(), db, 3)
	require.NoError(t, err)
	assert.Equal(t, IDList{4, 6}, g.UserIDs)
	assert.True(t, g.PaidWithToken(6))
	assert.Equal(t, []int{9}, g.Additions.For(6).IDs())
}

func TestSaveSession_Cleared(t *testing.T) {
	repo, db, mock, close := setupBookingMock(t)
	defer close()

	s := &Session{ID: 12}
	s.Clear()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET user_id = $1, booked = $2, booked_with_token = $3, additions = $4 WHERE id = $5")).
		WithArgs(nil, false, false, "[]", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveSession(context.Background(), db, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveGroup(t *testing.T) {
	repo, db, mock, close := setupBookingMock(t)
	defer close()

	g := &GroupSession{ID: 3, UserIDs: IDList{4}, TokenUserIDs: IDList{}, Additions: GroupAdditions{}}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_sessions SET user_ids = $1, token_user_ids = $2, additions = $3 WHERE id = $4")).
		WithArgs("{4}", "{}", "[]", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveGroup(context.Background(), db, g))

	mock.ExpectExec("UPDATE group_sessions").WillReturnError(errors.New("serialization failure"))
	assert.ErrorIs(t, repo.SaveGroup(context.Background(), db, g), apperr.ErrStoreWrite)
}

func TestListGroupSessions_DerivesCountAndBooked(t *testing.T) {
	repo, _, mock, close := setupBookingMock(t)
	defer close()

	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	cols := append(append([]string{}, groupCols...), "activity_name", "coach_name", "capacity", "count", "booked")

	mock.ExpectQuery(regexp.QuoteMeta("cardinality(g.user_ids) >= a.capacity AS booked FROM group_sessions g")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, 1, 2, from, "09:00:00", "10:00:00", "{4,6}", "{}", "[]", time.Now(),
				"Pilates", "Maya", 2, 2, true))

	out, err := repo.ListGroupSessions(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Pilates", out[0].ActivityName)
	assert.Equal(t, 2, out[0].Participants)
	assert.True(t, out[0].Full)
	assert.NoError(t, mock.ExpectationsWereMet())
}
