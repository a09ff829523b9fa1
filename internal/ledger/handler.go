package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListMine godoc
// @Summary      List my transactions
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}   Transaction
// @Router       /wallet/transactions [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// ListAll godoc
// @Summary      List transactions
// @Description  Admin transaction dashboard feed with optional filters.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        user_id   query  int     false  "User ID"
// @Param        type      query  string  false  "Transaction type tag"
// @Param        currency  query  string  false  "Currency"
// @Param        from      query  string  false  "Start (RFC3339)"
// @Param        to        query  string  false  "End (RFC3339)"
// @Success      200  {array}   Transaction
// @Failure      400  {object}  gin.H
// @Router       /admin/transactions [get]
func (h *Handler) ListAll(c *gin.Context) {
	var f Filter

	if s := c.Query("user_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		f.UserID = &id
	}
	if s := c.Query("type"); s != "" {
		t, err := ParseType(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Type = t
	}
	if s := c.Query("currency"); s != "" {
		cur, err := ParseCurrency(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Currency = cur
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if s := c.Query(key); s != "" {
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " format, use RFC3339"})
				return
			}
			*dst = &ts
		}
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// Summary godoc
// @Summary      Transaction totals
// @Description  Count and sum of transactions grouped by type and currency.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        from  query  string  true  "Start (RFC3339)"
// @Param        to    query  string  true  "End (RFC3339)"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/transactions/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from format, use RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to format, use RFC3339"})
		return
	}

	rows, err := h.repo.Summary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from": from,
		"to":   to,
		"data": rows,
	})
}
