package booking

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Item is one purchased add-on unit, priced at the time of purchase.
type Item struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Items is stored as a JSONB array with one element per unit.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		it = Items{}
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *Items) Scan(src interface{}) error {
	return scanJSON(src, it)
}

func (it Items) IDs() []int {
	ids := make([]int, 0, len(it))
	for _, i := range it {
		ids = append(ids, i.ID)
	}
	return ids
}

// GroupAddition holds the add-ons one participant bought for a group seat.
type GroupAddition struct {
	UserID int   `json:"user_id"`
	Items  Items `json:"items"`
}

type GroupAdditions []GroupAddition

func (g GroupAdditions) Value() (driver.Value, error) {
	if g == nil {
		g = GroupAdditions{}
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GroupAdditions) Scan(src interface{}) error {
	return scanJSON(src, g)
}

// For returns every item userID bought across all entries.
func (g GroupAdditions) For(userID int) Items {
	var out Items
	for _, a := range g {
		if a.UserID == userID {
			out = append(out, a.Items...)
		}
	}
	return out
}

func (g GroupAdditions) Without(userID int) GroupAdditions {
	out := GroupAdditions{}
	for _, a := range g {
		if a.UserID != userID {
			out = append(out, a)
		}
	}
	return out
}

// Add appends items to userID's own entry, creating it when missing.
func (g GroupAdditions) Add(userID int, items Items) GroupAdditions {
	for i := range g {
		if g[i].UserID == userID {
			g[i].Items = append(g[i].Items, items...)
			return g
		}
	}
	return append(g, GroupAddition{UserID: userID, Items: items})
}

func scanJSON(src interface{}, dst interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// IDList is a Postgres integer[] of user ids.
type IDList []int

func (l IDList) Value() (driver.Value, error) {
	a := make(pq.Int64Array, 0, len(l))
	for _, id := range l {
		a = append(a, int64(id))
	}
	return a.Value()
}

func (l *IDList) Scan(src interface{}) error {
	var a pq.Int64Array
	if err := a.Scan(src); err != nil {
		return err
	}
	out := make(IDList, 0, len(a))
	for _, id := range a {
		out = append(out, int(id))
	}
	*l = out
	return nil
}

func (l IDList) Contains(id int) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func (l IDList) Without(id int) IDList {
	out := IDList{}
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Session is a one-to-one slot with a coach.
type Session struct {
	ID              int       `db:"id" json:"id"`
	ActivityID      int       `db:"activity_id" json:"activity_id"`
	CoachID         int       `db:"coach_id" json:"coach_id"`
	Date            time.Time `db:"date" json:"date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	UserID          *int      `db:"user_id" json:"user_id"`
	Booked          bool      `db:"booked" json:"booked"`
	BookedWithToken bool      `db:"booked_with_token" json:"booked_with_token"`
	Additions       Items     `db:"additions" json:"additions"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// OwnedBy reports whether userID currently holds the booking.
func (s *Session) OwnedBy(userID int) bool {
	return s.Booked && s.UserID != nil && *s.UserID == userID
}

// Clear returns the slot to the unbooked state.
func (s *Session) Clear() {
	s.UserID = nil
	s.Booked = false
	s.BookedWithToken = false
	s.Additions = Items{}
}

// GroupSession is a shared slot. Its participant count is len(UserIDs) and
// it is full once that reaches the activity capacity.
type GroupSession struct {
	ID           int            `db:"id" json:"id"`
	ActivityID   int            `db:"activity_id" json:"activity_id"`
	CoachID      int            `db:"coach_id" json:"coach_id"`
	Date         time.Time      `db:"date" json:"date"`
	StartTime    string         `db:"start_time" json:"start_time"`
	EndTime      string         `db:"end_time" json:"end_time"`
	UserIDs      IDList         `db:"user_ids" json:"user_ids"`
	TokenUserIDs IDList         `db:"token_user_ids" json:"token_user_ids"`
	Additions    GroupAdditions `db:"additions" json:"additions"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

func (g *GroupSession) Count() int {
	return len(g.UserIDs)
}

func (g *GroupSession) Booked(capacity int) bool {
	return g.Count() >= capacity
}

func (g *GroupSession) Has(userID int) bool {
	return g.UserIDs.Contains(userID)
}

func (g *GroupSession) PaidWithToken(userID int) bool {
	return g.TokenUserIDs.Contains(userID)
}

func (g *GroupSession) Join(userID int, withToken bool) {
	g.UserIDs = append(g.UserIDs, userID)
	if withToken {
		g.TokenUserIDs = append(g.TokenUserIDs, userID)
	}
}

// Remove drops userID, its token flag and its additions. Other
// participants are left untouched.
func (g *GroupSession) Remove(userID int) {
	g.UserIDs = g.UserIDs.Without(userID)
	g.TokenUserIDs = g.TokenUserIDs.Without(userID)
	g.Additions = g.Additions.Without(userID)
}

func (g *GroupSession) ClearAll() {
	g.UserIDs = IDList{}
	g.TokenUserIDs = IDList{}
	g.Additions = GroupAdditions{}
}

type SessionView struct {
	Session
	ActivityName string `db:"activity_name" json:"activity_name"`
	CoachName    string `db:"coach_name" json:"coach_name"`
}

type GroupSessionView struct {
	GroupSession
	ActivityName string `db:"activity_name" json:"activity_name"`
	CoachName    string `db:"coach_name" json:"coach_name"`
	Capacity     int    `db:"capacity" json:"capacity"`
	Participants int    `db:"count" json:"count"`
	Full         bool   `db:"booked" json:"booked"`
}

type MySessions struct {
	Individual []SessionView      `json:"individual"`
	Group      []GroupSessionView `json:"group"`
}

type CreateSessionRequest struct {
	ActivityID int    `json:"activity_id" binding:"required,gt=0"`
	CoachID    int    `json:"coach_id" binding:"required,gt=0"`
	Date       string `json:"date" binding:"required" example:"2026-10-20"`
	StartTime  string `json:"start_time" binding:"required" example:"18:00"`
	EndTime    string `json:"end_time" binding:"required" example:"19:00"`
}

type BookRequest struct {
	UseToken bool `json:"use_token"`
}
