package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"sms-ledger/internal/feedback"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
	"sms-ledger/internal/resolver"
	"sms-ledger/internal/smsparser"
	"sms-ledger/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dfccJohn = ": JOHN DOE CARD**1234 DEBITED USD 1,250.00 ON(15/JAN/2024 14:30)"

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type testServer struct {
	router *gin.Engine
	store  *store.MockStore
	logger *logging.MockLogger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := store.NewMockStore(
		models.Category{ID: 1, Name: "Uncategorized"},
		models.Category{ID: 2, Name: "Transport"},
	)
	m.Descriptions = []models.DescriptionMapping{{Description: "uber", Category: "Transport"}}
	m.Sources = []models.SourceMapping{{Reference: "1234", Source: "DFCC Visa"}}

	logger := logging.NewMockLogger()
	pipeline := ingest.NewPipeline(smsparser.NewExtractor(nil, logger), m, resolver.PolicyFirst, ',', logger)
	h := NewHandler(m, pipeline, feedback.NewService(m, logger), logger)
	return &testServer{router: NewRouter(h, gin.TestMode), store: m, logger: logger}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "messages.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func seedTransaction(t *testing.T, s *testServer, description string, categoryID int64) int64 {
	t.Helper()
	tx, err := s.store.CreateTransaction(context.Background(), models.Transaction{
		Amount: decimal.NewFromInt(10), Currency: "LKR", Description: description,
		CategoryID: categoryID, DateTime: "2024-01-15 14:30:00", Source: "1234",
	})
	require.NoError(t, err)
	return tx.ID
}

func TestImport(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "sms\n\""+dfccJohn+"\"\nhello\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID       string          `json:"id"`
		Outcome  string          `json:"outcome"`
		Counters ingest.Counters `json:"counters"`
		Drafts   []struct {
			Amount      json.Number `json:"amount"`
			Currency    string      `json:"currency"`
			Source      string      `json:"source"`
			Description string      `json:"description"`
			DateTime    string      `json:"datetime"`
			CategoryID  int64       `json:"category_id"`
		} `json:"drafts"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ready", resp.Outcome)
	assert.Equal(t, ingest.Counters{TotalRows: 2, NonEmpty: 2, Matched: 1}, resp.Counters)
	require.Len(t, resp.Drafts, 1)
	assert.Equal(t, "1250", resp.Drafts[0].Amount.String())
	assert.Equal(t, "DFCC Visa", resp.Drafts[0].Source)
	assert.Equal(t, "2024-01-15 14:30:00", resp.Drafts[0].DateTime)
	assert.Empty(t, s.store.TransactionMap, "import never writes")
}

func TestImportRejectsMissingColumn(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "message\n"+dfccJohn+"\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommitBatch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/transactions/batch", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/transactions/batch", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	batch := `[
		{"amount": 1250.00, "datetime": "2024-01-15 14:30:00", "source": "DFCC Visa", "description": "JOHN DOE", "category_id": 1},
		{"amount": "850.50", "currency": "LKR", "datetime": "2024-01-16 08:10:00", "source": "DFCC Visa", "description": "UBER", "category_id": 2}
	]`
	w = s.do(t, http.MethodPost, "/api/transactions/batch", batch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool    `json:"success"`
		Count   int     `json:"count"`
		IDs     []int64 `json:"ids"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "LKR", s.store.TransactionMap[resp.IDs[0]].Currency)
}

func TestCommitBatchIsAllOrNothing(t *testing.T) {
	s := newTestServer(t)

	batch := `[
		{"amount": 1, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "ok", "category_id": 1},
		{"amount": 1, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "bad", "category_id": 99}
	]`
	w := s.do(t, http.MethodPost, "/api/transactions/batch", batch)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.store.TransactionMap)

	s.store.InsertBatchError = errors.New("connection reset")
	w = s.do(t, http.MethodPost, "/api/transactions/batch", `[{"amount": 1, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "ok"}]`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, s.logger.HasEntry("ERROR", "HTTP request"))
}

func TestCommitBatchRequiresAmount(t *testing.T) {
	s := newTestServer(t)

	for _, batch := range []string{
		`[{"datetime": "2024-01-15 14:30:00", "source": "x", "description": "no amount", "category_id": 1}]`,
		`[{"amount": null, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "null amount"}]`,
		`[{"amount": 1, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "ok"},
		  {"datetime": "2024-01-15 14:30:00", "source": "x", "description": "second row"}]`,
	} {
		w := s.do(t, http.MethodPost, "/api/transactions/batch", batch)
		assert.Equal(t, http.StatusBadRequest, w.Code, batch)
		assert.Contains(t, w.Body.String(), "Amount", batch)
	}
	assert.Empty(t, s.store.TransactionMap)

	w := s.do(t, http.MethodPost, "/api/transactions/batch", `[{"amount": 0, "datetime": "2024-01-15 14:30:00", "source": "x", "description": "zero"}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, s.store.TransactionMap, 1)
}

func TestNewRouterLeavesAmountEncodingAlone(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = false
	defer func() { decimal.MarshalJSONWithoutQuotes = true }()

	newTestServer(t)
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"amount": 99.5, "category_id": 2, "datetime": "15/01/2024 09:00", "source": "Cash", "description": "Taxi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Transaction
	decode(t, w, &created)
	assert.Equal(t, "2024-01-15 09:00:00", created.DateTime)

	w = s.do(t, http.MethodPost, "/api/transactions", map[string]interface{}{"amount": 1, "source": "Cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/transactions", nil)
	var list []models.Transaction
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Transport", list[0].Category)
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t)
	id := seedTransaction(t, s, "UBER", 1)
	path := fmt.Sprintf("/api/transactions/%d", id)

	w := s.do(t, http.MethodPatch, path, map[string]interface{}{"source": "Visa"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Visa", s.store.TransactionMap[id].Source)

	w = s.do(t, http.MethodPatch, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/transactions/999", map[string]interface{}{"source": "Visa"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/transactions/abc", map[string]interface{}{"source": "Visa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, path, map[string]interface{}{"category_id": 2, "saveMapping": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []models.DescriptionMapping{
		{Description: "uber", Category: "Transport"},
		{Description: "UBER", Category: "Transport"},
	}, s.store.Descriptions)

	w = s.do(t, http.MethodPatch, "/api/transactions/999", map[string]interface{}{"category_id": 2, "saveMapping": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTransactionUnlearnableMapping(t *testing.T) {
	s := newTestServer(t)
	id := seedTransaction(t, s, "UBER", 1)
	path := fmt.Sprintf("/api/transactions/%d", id)

	w := s.do(t, http.MethodPatch, path, map[string]interface{}{"description": "  ", "category_id": 2, "saveMapping": true})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, int64(1), s.store.TransactionMap[id].CategoryID)
	assert.Equal(t, "UBER", s.store.TransactionMap[id].Description)

	s.store.UpsertError = errors.New("disk full")
	w = s.do(t, http.MethodPatch, path, map[string]interface{}{"category_id": 2, "saveMapping": true})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int64(2), s.store.TransactionMap[id].CategoryID)
	assert.Len(t, s.store.Descriptions, 1)
}

func TestBulkUpdate(t *testing.T) {
	s := newTestServer(t)
	a := seedTransaction(t, s, "UBER", 1)
	b := seedTransaction(t, s, "UBER", 1)
	other := seedTransaction(t, s, "UBER EATS", 1)

	w := s.do(t, http.MethodPatch, fmt.Sprintf("/api/transactions/%d", a), map[string]interface{}{
		"bulkUpdate": true, "description": "UBER", "old_category_id": 1, "category_id": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		UpdatedCount int64 `json:"updatedCount"`
	}
	decode(t, w, &resp)
	assert.Equal(t, int64(2), resp.UpdatedCount)
	assert.Equal(t, int64(2), s.store.TransactionMap[b].CategoryID)
	assert.Equal(t, int64(1), s.store.TransactionMap[other].CategoryID)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/categories", map[string]string{"category": "Food"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Category
	decode(t, w, &created)
	assert.Equal(t, "Food", created.Name)
	assert.Equal(t, int64(3), created.ID)

	w = s.do(t, http.MethodPost, "/api/categories", map[string]string{"category": "Food"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Category already exists"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/categories", map[string]string{"category": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/categories", nil)
	var list []models.Category
	decode(t, w, &list)
	assert.Len(t, list, 3)
}

func TestDescriptionsAndSources(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/descriptions", map[string]string{"description": "uber", "category": "Taxi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/descriptions", map[string]string{"description": "uber"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/descriptions", nil)
	assert.JSONEq(t, `[{"description":"uber","category":"Taxi"}]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/sources", nil)
	assert.JSONEq(t, `[{"reference":"1234","source":"DFCC Visa"}]`, w.Body.String())
}

func TestReimbursementsAndStats(t *testing.T) {
	s := newTestServer(t)
	id := seedTransaction(t, s, "DINNER", 2)

	w := s.do(t, http.MethodPost, "/api/reimbursements", map[string]interface{}{
		"amount": 4, "transaction_id": id, "datetime": "2024-01-20 10:00:00", "description": "split",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/reimbursements", map[string]interface{}{"amount": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/stats/monthly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"month":"2024-01","category":"Transport","total_spent":10,"total_reimbursed":4,"net_amount":6}]`, w.Body.String())
}

func TestPatternsAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/patterns", nil)
	assert.JSONEq(t, `{"patterns":["DFCC CC","Card Usage Alert"]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&parsererror.ValidationError{Reason: "x"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(parsererror.ErrEmptyBatch))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("x: %w", parsererror.ErrNotFound)))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("x: %w", parsererror.ErrAlreadyExists)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
