package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

const defaultWindow = 14 * 24 * time.Hour

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

// dateRange reads ?from=&to= as dates. The window defaults to the next two
// weeks starting today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.Add(defaultWindow)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must look like " + DateLayout})
			return time.Time{}, time.Time{}, false
		}
		from = t
		to = from.Add(defaultWindow)
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must look like " + DateLayout})
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must be after from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// CreateSession godoc
// @Summary      Create an individual session slot
// @Tags         admin,sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body booking.CreateSessionRequest true "Slot"
// @Success      201 {object} booking.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// CreateGroupSession godoc
// @Summary      Create a group session slot
// @Tags         admin,sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body booking.CreateSessionRequest true "Slot"
// @Success      201 {object} booking.GroupSession
// @Router       /admin/group-sessions [post]
func (h *Handler) CreateGroupSession(c *gin.Context) {
	var req CreateSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.CreateGroupSession(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// ListSessions godoc
// @Summary      List individual sessions in a date window
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to   query string false "Day after the last (YYYY-MM-DD)"
// @Success      200 {array} booking.SessionView
// @Router       /sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	out, err := h.service.ListSessions(c.Request.Context(), from, to)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListGroupSessions godoc
// @Summary      List group sessions in a date window
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} booking.GroupSessionView
// @Router       /group-sessions [get]
func (h *Handler) ListGroupSessions(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	out, err := h.service.ListGroupSessions(c.Request.Context(), from, to)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Router       /sessions/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	out, err := h.service.ListMySessions(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// BookSession godoc
// @Summary      Book an individual session
// @Description  Pays with one private token when use_token is set, otherwise with credits. Free members are not charged.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Param        request body booking.BookRequest false "Payment choice"
// @Success      200 {object} booking.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/book [post]
func (h *Handler) BookSession(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	var req BookRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.BookSession(c.Request.Context(), sessionID, userID, req.UseToken)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// JoinGroup godoc
// @Summary      Join a group session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        groupID path int true "Group session ID"
// @Param        request body booking.BookRequest false "Payment choice"
// @Success      200 {object} booking.GroupSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Router       /group-sessions/{groupID}/join [post]
func (h *Handler) JoinGroup(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	groupID, ok := pathID(c, "groupID")
	if !ok {
		return
	}
	var req BookRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.JoinGroup(c.Request.Context(), groupID, userID, req.UseToken)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
