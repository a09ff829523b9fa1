package bundle

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

// @Summary      List bundles on sale
// @Tags         bundles
// @Produce      json
// @Success      200 {array} Bundle
// @Router       /bundles [get]
func (h *Handler) List(c *gin.Context) {
	bundles, err := h.svc.List(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundles)
}

// @Summary      Create a bundle
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Bundle"
// @Success      201 {object} Bundle
// @Router       /admin/bundles [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !api.BindJSON(c, &req) {
		return
	}
	b, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// @Summary      Buy a bundle with credits
// @Tags         bundles
// @Security     BearerAuth
// @Produce      json
// @Param        bundleID path int true "Bundle ID"
// @Success      200 {object} wallet.Balance
// @Failure      402 {object} api.ErrorResponse
// @Router       /bundles/{bundleID}/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}
	bundleID, err := strconv.Atoi(c.Param("bundleID"))
	if err != nil || bundleID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid bundleID"})
		return
	}

	bal, err := h.svc.Purchase(c.Request.Context(), userID, bundleID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}
