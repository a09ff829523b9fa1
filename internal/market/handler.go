package market

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// @Summary      List market items
// @Tags         market
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} market.Item
// @Failure      500 {object} api.ErrorResponse
// @Router       /market/items [get]
func (h *Handler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Create a market item
// @Tags         admin,market
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body market.CreateItemRequest true "Item payload"
// @Success      201 {object} market.Item
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/market/items [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if !api.BindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		api.Fail(c, fmt.Errorf("%w: price cannot be negative", apperr.ErrValidation))
		return
	}

	item, err := h.repo.Create(c.Request.Context(), req.Name, req.Price, req.Quantity)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// @Summary      Restock a market item
// @Tags         admin,market
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        itemID path int true "Item ID"
// @Param        request body market.RestockRequest true "Units to add"
// @Success      200 {object} market.Item
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/market/items/{itemID}/restock [post]
func (h *Handler) Restock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid item id"})
		return
	}
	var req RestockRequest
	if !api.BindJSON(c, &req) {
		return
	}

	item, err := h.repo.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
