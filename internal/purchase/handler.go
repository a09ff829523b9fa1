package purchase

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type Purchaser interface {
	PayForItems(ctx context.Context, sessionID, userID int, cart Cart) (*Receipt, error)
	PayForGroupItems(ctx context.Context, groupID, userID int, cart Cart) (*Receipt, error)
	Checkout(ctx context.Context, userID int, cart Cart) (*Receipt, error)
}

type Handler struct {
	svc Purchaser
}

func NewHandler(svc Purchaser) *Handler {
	return &Handler{svc: svc}
}

// bind reads the member id and the cart; it answers the request itself on
// failure.
func bind(c *gin.Context) (int, Cart, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return 0, Cart{}, false
	}
	var cart Cart
	if !api.BindJSON(c, &cart) {
		return 0, Cart{}, false
	}
	if errs := api.ValidateStruct(cart); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return 0, Cart{}, false
	}
	return userID, cart, true
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

// @Summary      Buy add-ons for my private session
// @Tags         purchase
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Param        request body Cart true "Items"
// @Success      200 {object} Receipt
// @Failure      402 {object} api.ErrorResponse
// @Router       /sessions/{sessionID}/items [post]
func (h *Handler) PayForItems(c *gin.Context) {
	sessionID, ok := pathID(c, "sessionID")
	if !ok {
		return
	}
	userID, cart, ok := bind(c)
	if !ok {
		return
	}
	r, err := h.svc.PayForItems(c.Request.Context(), sessionID, userID, cart)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Buy add-ons for my group seat
// @Tags         purchase
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        groupID path int true "Group session ID"
// @Param        request body Cart true "Items"
// @Success      200 {object} Receipt
// @Router       /group-sessions/{groupID}/items [post]
func (h *Handler) PayForGroupItems(c *gin.Context) {
	groupID, ok := pathID(c, "groupID")
	if !ok {
		return
	}
	userID, cart, ok := bind(c)
	if !ok {
		return
	}
	r, err := h.svc.PayForGroupItems(c.Request.Context(), groupID, userID, cart)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Shop checkout
// @Tags         purchase
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body Cart true "Items"
// @Success      200 {object} Receipt
// @Router       /market/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, cart, ok := bind(c)
	if !ok {
		return
	}
	r, err := h.svc.Checkout(c.Request.Context(), userID, cart)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
