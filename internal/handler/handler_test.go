package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nathanyu/account-transfer/internal/domain"
	"github.com/nathanyu/account-transfer/internal/engine"
	"github.com/nathanyu/account-transfer/internal/handler"
	"github.com/nathanyu/account-transfer/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopNotifier struct{}

func (nopNotifier) Notify(accountID, message string) {}

func setupRouter(t *testing.T) (*gin.Engine, *store.AccountStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := store.NewAccountStore()
	eng := engine.NewTransferEngine(accounts, nopNotifier{}, nil)
	h := handler.NewHandler(accounts, eng)

	router := gin.New()
	handler.SetupRoutes(router, h)
	return router, accounts
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAccount(t *testing.T) {
	router, accounts := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/accounts",
		`{"account_id":"Id-123","balance":1000}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	acc, err := accounts.Get("Id-123")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestCreateAccount_Duplicate(t *testing.T) {
	router, accounts := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/accounts",
		`{"account_id":"X","balance":100}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/v1/accounts",
		`{"account_id":"X","balance":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	assert.Equal(t, 1, accounts.Len())
}

func TestCreateAccount_BadBody(t *testing.T) {
	router, _ := setupRouter(t)

	// Missing account_id.
	w := doRequest(router, http.MethodPost, "/v1/accounts", `{"balance":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Negative initial balance.
	w = doRequest(router, http.MethodPost, "/v1/accounts",
		`{"account_id":"neg","balance":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccount(t *testing.T) {
	router, accounts := setupRouter(t)
	require.NoError(t, accounts.Create(domain.Account{ID: "1", Balance: decimal.NewFromInt(1000)}))

	w := doRequest(router, http.MethodGet, "/v1/accounts/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var acc domain.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
	assert.Equal(t, "1", acc.ID)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestGetAccount_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/accounts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestTransfer(t *testing.T) {
	router, accounts := setupRouter(t)
	require.NoError(t, accounts.Create(domain.Account{ID: "1", Balance: decimal.NewFromInt(1000)}))
	require.NoError(t, accounts.Create(domain.Account{ID: "2", Balance: decimal.NewFromInt(0)}))

	w := doRequest(router, http.MethodPost, "/v1/accounts/transfer",
		`{"from_account":"1","to_account":"2","amount":100}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.TransferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.TransferID)

	from, _ := accounts.Get("1")
	to, _ := accounts.Get("2")
	assert.True(t, from.Balance.Equal(decimal.NewFromInt(900)))
	assert.True(t, to.Balance.Equal(decimal.NewFromInt(100)))
}

func TestTransfer_ErrorMapping(t *testing.T) {
	router, accounts := setupRouter(t)
	require.NoError(t, accounts.Create(domain.Account{ID: "1", Balance: decimal.NewFromInt(1000)}))
	require.NoError(t, accounts.Create(domain.Account{ID: "2", Balance: decimal.NewFromInt(0)}))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantInBody string
	}{
		{
			name:       "overdraft",
			body:       `{"from_account":"2","to_account":"1","amount":1000}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "insufficient funds",
		},
		{
			name:       "same account",
			body:       `{"from_account":"1","to_account":"1","amount":100}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "same account",
		},
		{
			name:       "non-positive amount",
			body:       `{"from_account":"1","to_account":"2","amount":0}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "positive",
		},
		{
			name:       "unknown source",
			body:       `{"from_account":"ghost","to_account":"2","amount":10}`,
			wantStatus: http.StatusNotFound,
			wantInBody: "from account ghost not found",
		},
		{
			name:       "unknown destination",
			body:       `{"from_account":"1","to_account":"ghost","amount":10}`,
			wantStatus: http.StatusNotFound,
			wantInBody: "to account ghost not found",
		},
		{
			name:       "missing fields",
			body:       `{"amount":10}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/v1/accounts/transfer", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantInBody != "" {
				assert.Contains(t, w.Body.String(), tc.wantInBody)
			}
		})
	}

	// No failed request moved any money.
	from, _ := accounts.Get("1")
	to, _ := accounts.Get("2")
	assert.True(t, from.Balance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, to.Balance.Equal(decimal.NewFromInt(0)))
}

func TestListAndClearAccounts(t *testing.T) {
	router, accounts := setupRouter(t)
	require.NoError(t, accounts.Create(domain.Account{ID: "a", Balance: decimal.NewFromInt(10)}))
	require.NoError(t, accounts.Create(domain.Account{ID: "b", Balance: decimal.NewFromInt(20)}))

	w := doRequest(router, http.MethodGet, "/v1/accounts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.AllAccountsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.AccountCount)
	assert.True(t, resp.TotalBalance.Equal(decimal.NewFromInt(30)))

	w = doRequest(router, http.MethodDelete, "/v1/accounts", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, accounts.Len())
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
