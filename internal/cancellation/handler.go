package cancellation

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type Canceller interface {
	CancelIndividual(ctx context.Context, sessionID, userID int) Result
	CancelGroup(ctx context.Context, groupID, userID int) Result
	CancelGroupForAll(ctx context.Context, groupID int) Result
}

type Handler struct {
	svc Canceller
}

func NewHandler(svc Canceller) *Handler {
	return &Handler{svc: svc}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, res Result) {
	c.JSON(apperr.Status(res.Err), res)
}

// @Summary      Cancel my private session
// @Description  Refunds the session and its add-ons and frees the slot.
// @Tags         cancellation
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} Result
// @Failure      403 {object} Result
// @Failure      404 {object} Result
// @Router       /sessions/{sessionID}/cancel [post]
func (h *Handler) CancelIndividual(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	respond(c, h.svc.CancelIndividual(c.Request.Context(), sessionID, userID))
}

// @Summary      Leave a group session
// @Tags         cancellation
// @Security     BearerAuth
// @Produce      json
// @Param        groupID path int true "Group session ID"
// @Success      200 {object} Result
// @Failure      403 {object} Result
// @Router       /group-sessions/{groupID}/cancel [post]
func (h *Handler) CancelGroup(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}
	groupID, ok := pathID(c, "groupID")
	if !ok {
		return
	}
	respond(c, h.svc.CancelGroup(c.Request.Context(), groupID, userID))
}

// @Summary      Cancel a group session for everyone
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        groupID path int true "Group session ID"
// @Success      200 {object} Result
// @Router       /admin/group-sessions/{groupID}/cancel [post]
func (h *Handler) CancelGroupForAll(c *gin.Context) {
	groupID, ok := pathID(c, "groupID")
	if !ok {
		return
	}
	respond(c, h.svc.CancelGroupForAll(c.Request.Context(), groupID))
}
