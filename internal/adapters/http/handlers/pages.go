package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/views"
)

// PageHandler renders the HTML views. The engine must have the templates
// from views.Parse installed with SetHTMLTemplate.
type PageHandler struct {
	reader QuoteReader
	title  string
}

// NewPageHandler creates a page handler. title heads every page.
func NewPageHandler(reader QuoteReader, title string) *PageHandler {
	return &PageHandler{reader: reader, title: title}
}

// Home handles GET /: the latest quote, or a placeholder before the first one.
func (h *PageHandler) Home(c *gin.Context) {
	page := views.HomePage{Title: h.title, Links: views.ServerLinks}

	if rec, ok := h.reader.GetLatest(c.Request.Context()); ok {
		page.Latest = rec
	}

	c.HTML(http.StatusOK, views.HomeTemplate, page)
}

// History handles GET /history: today's quotes, then earlier days newest first.
func (h *PageHandler) History(c *gin.Context) {
	history := h.reader.History(c.Request.Context())

	c.HTML(http.StatusOK, views.HistoryTemplate, views.HistoryPage{
		Title: h.title + " - History",
		Links: views.ServerLinks,
		Today: history.Today,
		Days:  history.Days,
	})
}

// RegisterRoutes mounts the pages on rg.
func (h *PageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Home)
	rg.GET("/history", h.History)
}
