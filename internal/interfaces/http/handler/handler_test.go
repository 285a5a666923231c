package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	apppurchasing "github.com/stockledger/backend/internal/application/purchasing"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	jwt    *auth.JWTService
}

// newTestServer wires every ledger handler over a fresh SQLite database.
// A non-nil jwt turns authentication on.
func newTestServer(t *testing.T, jwt *auth.JWTService) *testServer {
	t.Helper()
	db := persistencetest.NewSQLiteDB(t)
	log := zaptest.NewLogger(t)
	clock := shared.NewFixedClock(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	repos := persistence.NewRepositories(db)

	deps := appinv.ServiceDeps{
		Scope:  persistence.NewGormTransactionScope(db),
		Repos:  repos,
		Clock:  clock,
		Logger: log,
	}
	orders := apppurchasing.NewService(apppurchasing.ServiceDeps{
		Scope:  persistence.NewGormPurchasingTransactionScope(db),
		Repos:  repos,
		Clock:  clock,
		Logger: log,
		Rates:  purchasing.DefaultTaxRates(),
	})

	store := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = store.Close() })
	revocations := auth.NewRevocations(store)

	cfg := router.Config{
		ServiceName:    "stockledger-test",
		MaxBodySize:    1 << 20,
		Idempotency:    store,
		IdempotencyTTL: time.Hour,
		Auth:           middleware.AuthConfig{JWTService: jwt, Revocations: revocations},
		Logger:         log,
	}
	engine, err := router.NewEngine(cfg)
	require.NoError(t, err)

	handler.NewSystemHandler("test", nil).RegisterRoutes(engine)
	router.NewRouter(engine, router.WithGroupMiddleware(router.APIMiddleware(cfg)...)).
		Register(
			handler.NewAuthHandler(revocations),
			handler.NewStockItemHandler(appinv.NewStockService(deps)),
			handler.NewCommitmentHandler(appinv.NewCommitmentService(deps)),
			handler.NewReservationHandler(appinv.NewReservationService(deps, 0)),
			handler.NewTransferHandler(appinv.NewTransferService(deps)),
			handler.NewAuditHandler(appinv.NewAuditService(deps)),
			handler.NewPurchaseOrderHandler(orders),
		).
		Setup()

	return &testServer{engine: engine, jwt: jwt}
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, "/api/v1"+c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when out is non-nil, its data
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

func (s *testServer) createStore(t *testing.T, code string) uuid.UUID {
	t.Helper()
	w := s.do(t, call{method: http.MethodPost, path: "/stores", body: appinv.CreateStoreRequest{Name: "Store " + code, Code: code}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var store appinv.StoreResponse
	decode(t, w, &store)
	return store.ID
}

func (s *testServer) createItem(t *testing.T, sku string, qty int64, home uuid.UUID) appinv.StockItemResponse {
	t.Helper()
	w := s.do(t, call{method: http.MethodPost, path: "/stock-items", body: appinv.CreateItemRequest{
		SKU:             sku,
		ItemName:        "Item " + sku,
		Condition:       "new",
		ReOrder:         2,
		HomeStoreID:     &home,
		InitialQuantity: qty,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item appinv.StockItemResponse
	decode(t, w, &item)
	return item
}

func TestStockItemHandler_ReceiveAndIssue(t *testing.T) {
	s := newTestServer(t, nil)
	store := s.createStore(t, "MEL")
	item := s.createItem(t, "WM-1", 5, store)
	assert.Equal(t, int64(5), item.TotalOnHand)
	assert.Equal(t, middleware.AnonymousActor, item.CreatedBy)

	w := s.do(t, call{method: http.MethodPost, path: "/stock-items/" + item.ID.String() + "/receive", body: appinv.ReceiveRequest{Quantity: 3}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &item)
	assert.Equal(t, int64(8), item.TotalOnHand)

	w = s.do(t, call{method: http.MethodPost, path: "/stock-items/" + item.ID.String() + "/issue", body: appinv.IssueRequest{Quantity: 2}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &item)
	assert.Equal(t, int64(6), item.TotalOnHand)

	w = s.do(t, call{method: http.MethodGet, path: "/stock-items/" + item.ID.String() + "/history"})
	require.Equal(t, http.StatusOK, w.Code)
	var history []appinv.HistoryEntryResponse
	resp := decode(t, w, &history)
	assert.Len(t, history, 3)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
}

func TestStockItemHandler_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	store := s.createStore(t, "SYD")
	item := s.createItem(t, "FR-1", 2, store)

	tests := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{
			name:   "issue beyond stock",
			call:   call{method: http.MethodPost, path: "/stock-items/" + item.ID.String() + "/issue", body: appinv.IssueRequest{Quantity: 10}},
			status: http.StatusUnprocessableEntity,
			code:   dto.ErrCodeInsufficientStock,
		},
		{
			name:   "missing item",
			call:   call{method: http.MethodGet, path: "/stock-items/" + uuid.New().String()},
			status: http.StatusNotFound,
			code:   dto.ErrCodeNotFound,
		},
		{
			name:   "malformed id",
			call:   call{method: http.MethodGet, path: "/stock-items/not-a-uuid"},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "binding failure",
			call:   call{method: http.MethodPost, path: "/stock-items", body: map[string]any{"re_order": -1}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "bad aisle",
			call:   call{method: http.MethodPost, path: "/stock-items/" + item.ID.String() + "/receive", body: appinv.ReceiveRequest{Quantity: 1, Aisle: "!!"}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.call)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestCommitmentHandler_ReleaseTwice(t *testing.T) {
	s := newTestServer(t, nil)
	store := s.createStore(t, "BNE")
	item := s.createItem(t, "OV-1", 4, store)

	w := s.do(t, call{method: http.MethodPost, path: "/commitments", body: appinv.CommitRequest{
		StockItemID: item.ID,
		Quantity:    3,
		Customer:    appinv.CustomerDTO{Name: "J. Citizen"},
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var commitment appinv.CommitmentResponse
	decode(t, w, &commitment)

	w = s.do(t, call{method: http.MethodGet, path: "/stock-items/" + item.ID.String()})
	decode(t, w, &item)
	assert.Equal(t, int64(3), item.CommittedQuantity)
	assert.Equal(t, int64(1), item.AvailableForSale)

	w = s.do(t, call{method: http.MethodPost, path: "/commitments/" + commitment.ID.String() + "/release"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodPost, path: "/commitments/" + commitment.ID.String() + "/release"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidTransition, decode(t, w, nil).Error.Code)
}

func TestStockItemHandler_DeactivateStore(t *testing.T) {
	s := newTestServer(t, nil)
	store := s.createStore(t, "CNS")
	item := s.createItem(t, "AC-9", 1, store)

	w := s.do(t, call{method: http.MethodPost, path: "/stores/" + store.String() + "/deactivate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp appinv.StoreResponse
	decode(t, w, &resp)
	assert.False(t, resp.IsActive)

	w = s.do(t, call{method: http.MethodPost, path: "/stock-items/" + item.ID.String() + "/receive", body: appinv.ReceiveRequest{
		Quantity:   1,
		LocationID: &store,
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w, nil).Error.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/stores/" + store.String() + "/deactivate"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransferHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	from := s.createStore(t, "A")
	to := s.createStore(t, "B")
	item := s.createItem(t, "DW-1", 5, from)

	w := s.do(t, call{method: http.MethodPost, path: "/transfers", body: appinv.CreateTransferRequest{
		StockItemID:    item.ID,
		FromLocationID: from,
		ToLocationID:   to,
		Quantity:       2,
		TransferType:   "restock",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var transfer appinv.TransferResponse
	decode(t, w, &transfer)

	w = s.do(t, call{method: http.MethodGet, path: "/transfers/pending"})
	require.Equal(t, http.StatusOK, w.Code)
	var pending []appinv.TransferResponse
	decode(t, w, &pending)
	assert.Len(t, pending, 1)

	base := "/transfers/" + transfer.ID.String()
	require.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodPost, path: base + "/approve"}).Code)

	w = s.do(t, call{method: http.MethodPost, path: base + "/approve"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidTransition, decode(t, w, nil).Error.Code)

	w = s.do(t, call{method: http.MethodPost, path: base + "/complete"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &transfer)
	assert.Equal(t, "completed", transfer.Status)

	w = s.do(t, call{method: http.MethodGet, path: "/stock-items/" + item.ID.String() + "/locations"})
	require.Equal(t, http.StatusOK, w.Code)
	var locations []appinv.LocationResponse
	decode(t, w, &locations)
	held := map[uuid.UUID]int64{}
	for _, loc := range locations {
		held[loc.StoreID] = loc.Quantity
	}
	assert.Equal(t, int64(3), held[from])
	assert.Equal(t, int64(2), held[to])
}

func TestPurchaseOrderHandler_CreateRejectsEmptyOrder(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, call{method: http.MethodPost, path: "/purchase-orders", body: apppurchasing.CreateOrderRequest{SupplierName: "Acme"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "items", resp.Error.Details[0].Field)
}

func TestIdempotencyKey_ReplayRejected(t *testing.T) {
	s := newTestServer(t, nil)
	headers := map[string]string{middleware.IdempotencyKeyHeader: "store-create-1"}

	first := s.do(t, call{method: http.MethodPost, path: "/stores", body: appinv.CreateStoreRequest{Name: "Hobart", Code: "HBA"}, headers: headers})
	require.Equal(t, http.StatusCreated, first.Code)

	second := s.do(t, call{method: http.MethodPost, path: "/stores", body: appinv.CreateStoreRequest{Name: "Hobart", Code: "HBA"}, headers: headers})
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, decode(t, second, nil).Error.Code)

	w := s.do(t, call{method: http.MethodGet, path: "/stores"})
	var stores []appinv.StoreResponse
	decode(t, w, &stores)
	assert.Len(t, stores, 1)
}

func TestCapabilities(t *testing.T) {
	jwt := auth.NewJWTService(config.JWTConfig{
		Enabled: true,
		Secret:  "a-test-secret-that-is-at-least-32-chars",
		Issuer:  "stockledger-test",
		TTL:     time.Hour,
	})
	s := newTestServer(t, jwt)

	viewer, _, err := jwt.GenerateToken("viewer", []string{auth.CapView})
	require.NoError(t, err)
	admin, _, err := jwt.GenerateToken("admin", []string{auth.CapAll})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodGet, path: "/stores"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/stores", token: viewer}).Code)

	w := s.do(t, call{method: http.MethodPost, path: "/stores", token: viewer, body: appinv.CreateStoreRequest{Name: "Perth", Code: "PER"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decode(t, w, nil).Error.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/stores", token: admin, body: appinv.CreateStoreRequest{Name: "Perth", Code: "PER"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/auth/me", token: viewer})
	require.Equal(t, http.StatusOK, w.Code)
	var session handler.SessionResponse
	decode(t, w, &session)
	assert.Equal(t, "viewer", session.Username)
	assert.Equal(t, []string{auth.CapView}, session.Capabilities)

	require.Equal(t, http.StatusNoContent, s.do(t, call{method: http.MethodPost, path: "/auth/logout", token: viewer}).Code)
	w = s.do(t, call{method: http.MethodGet, path: "/stores", token: viewer})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decode(t, w, nil).Error.Code)
}
