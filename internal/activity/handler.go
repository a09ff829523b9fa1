package activity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create an activity
// @Description  Admin-only: create a class type with its credit price and capacity
// @Tags         admin,activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body activity.CreateActivityRequest true "Activity payload"
// @Success      201 {object} activity.Activity
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /admin/activities [post]
func (h *Handler) CreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.CreateActivity(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary      List activities
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} activity.Activity
// @Router       /activities [get]
func (h *Handler) ListActivities(c *gin.Context) {
	activities, err := h.service.ListActivities(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

// @Summary      Get an activity
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        activityID path int true "Activity ID"
// @Success      200 {object} activity.Activity
// @Failure      404 {object} api.ErrorResponse
// @Router       /activities/{activityID} [get]
func (h *Handler) GetActivity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("activityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid activity ID"})
		return
	}

	a, err := h.service.GetActivity(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Router       /admin/coaches [post]
func (h *Handler) CreateCoach(c *gin.Context) {
	var req CreateCoachRequest
	if !api.BindJSON(c, &req) {
		return
	}

	coach, err := h.service.CreateCoach(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, coach)
}

// @Router       /coaches [get]
func (h *Handler) ListCoaches(c *gin.Context) {
	coaches, err := h.service.ListCoaches(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}
