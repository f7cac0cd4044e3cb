// Package api exposes the ledger over HTTP with gin.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"sms-ledger/internal/dateutils"
	"sms-ledger/internal/feedback"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/store"

	"github.com/gin-gonic/gin"
)

// Handler serves the /api routes.
type Handler struct {
	repo     store.Repository
	pipeline *ingest.Pipeline
	feedback *feedback.Service
	logger   logging.Logger
}

// NewHandler creates a Handler.
func NewHandler(repo store.Repository, pipeline *ingest.Pipeline, fb *feedback.Service, logger logging.Logger) *Handler {
	return &Handler{repo: repo, pipeline: pipeline, feedback: fb, logger: logging.OrDefault(logger)}
}

// Import parses a multipart CSV upload (field "file") into a preview. Nothing is stored.
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A CSV file is required in the 'file' field")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	preview, err := h.pipeline.Parse(c.Request.Context(), file)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	h.logger.Info("Upload parsed",
		logging.F(logging.FieldFile, fileHeader.Filename),
		logging.F(logging.FieldPreviewID, preview.ID),
		logging.F(logging.FieldMatched, preview.Counters.Matched))

	c.JSON(http.StatusOK, gin.H{
		"id":       preview.ID,
		"outcome":  preview.Outcome(),
		"counters": preview.Counters,
		"drafts":   preview.Drafts,
		"skipped":  preview.Skipped,
	})
}

// CommitBatch stores a confirmed preview (a JSON array of drafts) atomically.
func (h *Handler) CommitBatch(c *gin.Context) {
	var reqs []draftRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, "No transactions provided")
		return
	}
	drafts := make([]models.Draft, len(reqs))
	for i, req := range reqs {
		if err := validateStruct(req); err != nil {
			badRequest(c, fmt.Sprintf("Row %d: %s", i, err))
			return
		}
		drafts[i] = req.draft(h.pipeline.Extractor().DefaultCurrency())
	}

	ids, err := ingest.Commit(c.Request.Context(), h.repo, drafts)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(ids), "ids": ids})
}

// ListTransactions returns every transaction newest first.
func (h *Handler) ListTransactions(c *gin.Context) {
	txs, err := h.repo.Transactions(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching transactions")
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

// CreateTransaction stores one manually entered transaction.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, "Missing required fields: "+err.Error())
		return
	}
	datetime, _ := dateutils.Normalize(req.DateTime)

	tx, err := h.repo.CreateTransaction(c.Request.Context(), models.Transaction{
		Amount:      *req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		DateTime:    datetime,
		Source:      req.Source,
	})
	if err != nil {
		h.respondError(c, err, "Error creating transaction")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// UpdateTransaction handles partial updates, exact-match bulk recategorization
// (bulkUpdate) and mapping learning (saveMapping).
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid transaction id")
		return
	}

	var req patchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	if req.BulkUpdate && req.Description != nil && req.OldCategoryID != nil {
		if req.CategoryID == nil {
			badRequest(c, "category_id is required for a bulk update")
			return
		}
		res, err := h.feedback.Apply(ctx, feedback.Request{
			TransactionID: id,
			CategoryID:    *req.CategoryID,
			Bulk:          true,
			Description:   *req.Description,
			OldCategoryID: *req.OldCategoryID,
			Learn:         req.SaveMapping,
		})
		if err != nil {
			h.respondError(c, err, "Error updating transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "updatedCount": res.Updated, "learned": res.Learned})
		return
	}

	upd := models.TransactionUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Source:      req.Source,
	}
	if req.DateTime != nil {
		normalized, _ := dateutils.Normalize(*req.DateTime)
		upd.DateTime = &normalized
	}
	if upd.Empty() {
		badRequest(c, "No fields provided for update")
		return
	}

	// The mapping to learn is resolved before the update so a bad request changes nothing.
	var mapping *models.DescriptionMapping
	if req.SaveMapping && req.CategoryID != nil {
		var description string
		if req.Description != nil {
			description = *req.Description
		} else {
			tx, err := h.repo.Transaction(ctx, id)
			if err != nil {
				h.transactionError(c, err)
				return
			}
			description = tx.Description
		}
		m, err := h.feedback.MappingFor(ctx, description, *req.CategoryID)
		if err != nil {
			h.respondError(c, err, "Error preparing description mapping")
			return
		}
		mapping = &m
	}

	if err := h.repo.UpdateTransaction(ctx, id, upd); err != nil {
		h.transactionError(c, err)
		return
	}

	response := gin.H{"success": true}
	if mapping != nil {
		if err := h.feedback.SaveMapping(ctx, *mapping); err != nil {
			h.respondError(c, err, "Transaction updated but saving the description mapping failed")
			return
		}
		response["learned"] = mapping
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) transactionError(c *gin.Context, err error) {
	if statusFor(err) == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	h.respondError(c, err, "Error updating transaction")
}

// ListCategories returns every category.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.repo.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching categories")
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category; a taken name is a 409.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || validateStruct(req) != nil {
		badRequest(c, "Category name is required")
		return
	}
	category, err := h.repo.CreateCategory(c.Request.Context(), req.Category)
	if err != nil {
		if statusFor(err) == http.StatusConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		h.respondError(c, err, "Error creating category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListDescriptions returns the description mappings in table order.
func (h *Handler) ListDescriptions(c *gin.Context) {
	mappings, err := h.repo.DescriptionMappings(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching descriptions")
		return
	}
	if mappings == nil {
		mappings = []models.DescriptionMapping{}
	}
	c.JSON(http.StatusOK, mappings)
}

// SaveDescription upserts one description mapping.
func (h *Handler) SaveDescription(c *gin.Context) {
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || validateStruct(req) != nil {
		badRequest(c, "Description and category are required")
		return
	}
	mapping := models.DescriptionMapping{Description: req.Description, Category: req.Category}
	if err := h.repo.UpsertDescriptionMapping(c.Request.Context(), mapping); err != nil {
		h.respondError(c, err, "Error saving description mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListSources returns the source mappings.
func (h *Handler) ListSources(c *gin.Context) {
	mappings, err := h.repo.SourceMappings(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching sources")
		return
	}
	if mappings == nil {
		mappings = []models.SourceMapping{}
	}
	c.JSON(http.StatusOK, mappings)
}

// CreateReimbursement records a repayment against a transaction.
func (h *Handler) CreateReimbursement(c *gin.Context) {
	var req reimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		badRequest(c, "Missing required fields: "+err.Error())
		return
	}
	datetime, _ := dateutils.Normalize(req.DateTime)

	r, err := h.repo.CreateReimbursement(c.Request.Context(), models.Reimbursement{
		Amount:        *req.Amount,
		TransactionID: req.TransactionID,
		Description:   req.Description,
		DateTime:      datetime,
		Source:        req.Source,
	})
	if err != nil {
		h.respondError(c, err, "Error creating reimbursement")
		return
	}
	c.JSON(http.StatusCreated, r)
}

// MonthlyStats returns spending per month and category.
func (h *Handler) MonthlyStats(c *gin.Context) {
	stats, err := h.repo.MonthlyStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching monthly stats")
		return
	}
	if stats == nil {
		stats = []models.MonthlyStat{}
	}
	c.JSON(http.StatusOK, stats)
}

// Patterns lists the registered extraction patterns in evaluation order.
func (h *Handler) Patterns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"patterns": h.pipeline.Extractor().Registry().Names()})
}
