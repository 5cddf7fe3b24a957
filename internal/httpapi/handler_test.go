package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/ledger"
	"github.com/mmynk/ridesplit/internal/metrics"
	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
	"github.com/mmynk/ridesplit/internal/storage/jsonfile"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, store storage.Store) *gin.Engine {
	t.Helper()
	engine := ledger.New(store, ledger.Config{})
	_, err := engine.Seed(context.Background(), []string{"Moi", "Josemi"})
	require.NoError(t, err)
	return NewRouter(NewLedgerHandler(dispatch.New(engine), metrics.New()))
}

// wireResponse decodes the fields of dispatch.Response the tests inspect.
type wireResponse struct {
	Snapshot *models.Snapshot    `json:"snapshot"`
	Payment  *models.Payment     `json:"payment"`
	Error    *dispatch.ErrorBody `json:"error"`
}

func do(t *testing.T, r http.Handler, method, body string) (int, wireResponse) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/ledger", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp wireResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestLedgerHandler_Snapshot(t *testing.T) {
	r := newTestRouter(t, jsonfile.NewMemory())

	code, resp := do(t, r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Snapshot)
	assert.Len(t, resp.Snapshot.Companions, 2)
	assert.Nil(t, resp.Error)
}

func TestLedgerHandler_Action(t *testing.T) {
	r := newTestRouter(t, jsonfile.NewMemory())

	code, resp := do(t, r, http.MethodPost, `{"action":"addPayment","companionId":"MOI","amount":12.5,"date":"2025-01-06"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "12.5", resp.Payment.Amount.String())

	moi, ok := resp.Snapshot.Find("MOI")
	require.True(t, ok)
	assert.Equal(t, "12.5", moi.Balance.String())
}

func TestLedgerHandler_ErrorStatus(t *testing.T) {
	r := newTestRouter(t, jsonfile.NewMemory())

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind dispatch.Kind
	}{
		{"malformed json", `{"action":`, http.StatusBadRequest, dispatch.KindValidation},
		{"unknown action", `{"action":"settle"}`, http.StatusBadRequest, dispatch.KindValidation},
		{"bad amount", `{"action":"addPayment","companionId":"MOI","amount":"x"}`, http.StatusBadRequest, dispatch.KindValidation},
		{"unknown companion", `{"action":"deleteCompanion","companionId":"NOBODY"}`, http.StatusNotFound, dispatch.KindNotFound},
		{"duplicate", `{"action":"addCompanion","name":"josemi"}`, http.StatusConflict, dispatch.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, r, http.MethodPost, tt.body)
			assert.Equal(t, tt.wantCode, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Error.Kind)
			assert.Nil(t, resp.Snapshot)
		})
	}
}

// brokenStore fails every companion listing after seeding.
type brokenStore struct {
	storage.Store
	broken bool
}

func (s *brokenStore) ListCompanions(ctx context.Context) ([]*models.Companion, error) {
	if s.broken {
		return nil, errors.New("connection reset")
	}
	return s.Store.ListCompanions(ctx)
}

func TestLedgerHandler_StorageFailure(t *testing.T) {
	store := &brokenStore{Store: jsonfile.NewMemory()}
	r := newTestRouter(t, store)
	store.broken = true

	code, resp := do(t, r, http.MethodGet, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dispatch.KindStorage, resp.Error.Kind)
	assert.Nil(t, resp.Snapshot, "no fallback data on read failure")
}
