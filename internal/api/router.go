package api

import (
	"net/http"
	"time"

	"sms-ledger/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the gin engine serving h. mode is a gin mode ("release", "debug", "test").
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/import", h.Import)

		api.GET("/transactions", h.ListTransactions)
		api.POST("/transactions", h.CreateTransaction)
		api.POST("/transactions/batch", h.CommitBatch)
		api.PATCH("/transactions/:id", h.UpdateTransaction)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)

		api.GET("/descriptions", h.ListDescriptions)
		api.POST("/descriptions", h.SaveDescription)

		api.GET("/sources", h.ListSources)

		api.POST("/reimbursements", h.CreateReimbursement)

		api.GET("/stats/monthly", h.MonthlyStats)
		api.GET("/patterns", h.Patterns)
	}
	return router
}

// requestLogger logs every request with its status, latency and request id.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := []logging.Field{
			logging.F("request_id", requestID),
			logging.F("method", c.Request.Method),
			logging.F("path", c.Request.URL.Path),
			logging.F("status", c.Writer.Status()),
			logging.F("duration_ms", time.Since(start).Milliseconds()),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}
