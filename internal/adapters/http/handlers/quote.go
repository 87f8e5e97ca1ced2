package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// QuoteHandler exposes the quote service over HTTP.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// CurrentQuote handles GET /api/v1/quotes/current.
func (h *QuoteHandler) CurrentQuote(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, dto.NewSelectionResponse(h.service.CurrentSelection(ctx), h.service.Filter(ctx)))
}

// NextQuote handles POST /api/v1/quotes/next.
func (h *QuoteHandler) NextQuote(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, dto.NewSelectionResponse(h.service.NextQuote(ctx), h.service.Filter(ctx)))
}

// ListQuotes handles GET /api/v1/quotes.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes := h.service.Quotes()

	resp := make([]dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, dto.NewQuoteResponse(q))
	}

	c.JSON(http.StatusOK, resp)
}

// AddQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	q, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.AvailableCategories(),
		Filter:     h.service.Filter(c.Request.Context()),
	})
}

// GetFilter handles GET /api/v1/filter.
func (h *QuoteHandler) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FilterResponse{Category: h.service.Filter(c.Request.Context())})
}

// SetFilter handles PUT /api/v1/filter.
func (h *QuoteHandler) SetFilter(c *gin.Context) {
	var req dto.FilterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.SetFilter(ctx, req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FilterResponse{Category: h.service.Filter(ctx)})
}

// Export handles GET /api/v1/export as a file download.
func (h *QuoteHandler) Export(c *gin.Context) {
	doc, err := h.service.ExportDocument()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.ExportFilename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

// Import handles POST /api/v1/import. The body is the exported document,
// either raw or as the "file" field of a multipart form.
func (h *QuoteHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	body := c.Request.Body

	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "reading uploaded file: "+err.Error())
			return
		}
		defer func() { _ = f.Close() }()

		body = f
	}

	result, err := h.service.ImportDocument(ctx, body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	logging.FromContext(ctx).InfoContext(ctx, "quotes imported",
		slog.Int("accepted", result.Accepted),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("rejected", result.Rejected),
	)

	c.JSON(http.StatusOK, dto.NewImportResponse(result, len(h.service.Quotes())))
}

// SyncStatus handles GET /api/v1/sync.
func (h *QuoteHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSyncStatusResponse(h.service.SyncStatus()))
}

// SyncNow handles POST /api/v1/sync. A skipped sync answers 202.
func (h *QuoteHandler) SyncNow(c *gin.Context) {
	result, err := h.service.SyncNow(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if result.Skipped {
		status = http.StatusAccepted
	}

	c.JSON(status, dto.NewSyncResultResponse(result, h.service.SyncStatus()))
}

// RegisterQuoteRoutes registers the quote API on rg.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/current", h.CurrentQuote)
	quotes.POST("/next", h.NextQuote)

	rg.GET("/categories", h.Categories)
	rg.GET("/filter", h.GetFilter)
	rg.PUT("/filter", h.SetFilter)
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
	rg.GET("/sync", h.SyncStatus)
	rg.POST("/sync", h.SyncNow)
}
