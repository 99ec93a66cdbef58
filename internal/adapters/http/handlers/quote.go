package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

// QuoteReader is the read side the handlers need. app.QueryService
// implements it.
type QuoteReader interface {
	GetLatest(ctx context.Context) (*domain.QuoteRecord, bool)
	GetToday(ctx context.Context) []domain.QuoteRecord
	GetByDate(ctx context.Context, date string) []domain.QuoteRecord
	ListDates(ctx context.Context) []string
	History(ctx context.Context) domain.HistoryView
}

// QuoteHandler serves the JSON API. Reads never fail: absent data is an
// empty object or array.
type QuoteHandler struct {
	reader QuoteReader
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(reader QuoteReader) *QuoteHandler {
	return &QuoteHandler{reader: reader}
}

// GetLatest handles GET /api/latest.
// Responds with the newest record, or {} before the first generation.
func (h *QuoteHandler) GetLatest(c *gin.Context) {
	rec, ok := h.reader.GetLatest(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetToday handles GET /api/today.
func (h *QuoteHandler) GetToday(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.GetToday(c.Request.Context()))
}

// GetByDate handles GET /api/quotes/:date. The date is not validated; a
// value that names no stored day yields [].
func (h *QuoteHandler) GetByDate(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.GetByDate(c.Request.Context(), c.Param("date")))
}

// ListDates handles GET /api/dates?limit=&cursor=.
// Dates are most recent first; nextCursor continues after the last item.
func (h *QuoteHandler) ListDates(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		if fields := dto.ValidationErrors(err); len(fields) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation, "invalid pagination parameters", fields,
			).WithTraceID(dto.GetTraceID(c)))

			return
		}

		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, "invalid pagination parameters")

		return
	}

	cursor, err := req.DecodeCursor()
	if err != nil && !errors.Is(err, dto.ErrNoCursor) {
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	dates := h.reader.ListDates(c.Request.Context())

	c.JSON(http.StatusOK, dto.PageDates(dates, cursor, req.GetLimit()))
}

// RegisterRoutes mounts the JSON API on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/latest", h.GetLatest)
	rg.GET("/today", h.GetToday)
	rg.GET("/quotes/:date", h.GetByDate)
	rg.GET("/dates", h.ListDates)
}
