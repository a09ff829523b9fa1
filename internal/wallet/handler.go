package wallet

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func targetUserID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("userID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return id, true
}

// @Summary      Get my wallet
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} Balance
// @Failure      401 {object} api.ErrorResponse
// @Router       /wallet [get]
func (h *Handler) GetMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	b, err := h.svc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      Get a member's wallet
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200 {object} Balance
// @Router       /admin/users/{userID}/wallet [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	b, err := h.svc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      Refill, deduct or sell credits
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID path int true "User ID"
// @Param        request body AdjustRequest true "Adjustment"
// @Success      200 {object} Balance
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Router       /admin/users/{userID}/wallet/adjust [post]
func (h *Handler) Adjust(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	var req AdjustRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.Adjust(c.Request.Context(), userID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      Set token counters
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID path int true "User ID"
// @Param        request body TokenUpdate true "Absolute token values"
// @Success      200 {object} Balance
// @Router       /admin/users/{userID}/tokens [put]
func (h *Handler) UpdateTokens(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	var req TokenUpdate
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.UpdateTokens(c.Request.Context(), userID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Router       /admin/users/{userID}/essentials [put]
func (h *Handler) UpdateEssentials(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	var req EssentialsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.UpdateEssentials(c.Request.Context(), userID, req.Till)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Router       /admin/users/{userID}/punches/remove [post]
func (h *Handler) RemovePunches(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	var req PunchRemoveRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.RemovePunches(c.Request.Context(), userID, req.Punches)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Router       /admin/users/{userID}/free [put]
func (h *Handler) SetFree(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	var req FreeRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.SetFree(c.Request.Context(), userID, req.IsFree)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
