package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/view"
)

type stubSubmitter struct {
	res view.PurchaseResult
	err error
}

func (s stubSubmitter) SubmitPurchase(ctx context.Context, count int64) (view.PurchaseResult, error) {
	return s.res, s.err
}

type stubIdentity struct {
	wallet string
}

func (s stubIdentity) Profile() (domain.AccountProfile, bool) {
	if s.wallet == "" {
		return domain.AccountProfile{}, false
	}
	return domain.AccountProfile{Wallet: s.wallet}, true
}

func postPurchase(t *testing.T, h *PurchaseHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/purchase", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitPurchase(rec, req)
	return rec
}

func TestSubmitPurchaseSuccess(t *testing.T) {
	h := NewPurchaseHandler(stubSubmitter{
		res: view.PurchaseResult{
			Purchase:     domain.PendingPurchase{ID: "p1", Count: 2, State: domain.PurchaseConfirmed},
			ShareMessage: "I just bought 2 tickets for a chance to win 1.200000 ETH in today's draw!",
		},
	}, nil, stubIdentity{}, discardLogger())

	rec := postPurchase(t, h, `{"count":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["share_message"], "1.200000 ETH")
}

func TestSubmitPurchaseErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.ErrInvalidPurchase, http.StatusBadRequest},
		{"price unknown", domain.ErrPriceUnknown, http.StatusBadRequest},
		{"in flight", domain.ErrPurchaseInFlight, http.StatusConflict},
		{"reverted", domain.ErrTxReverted, http.StatusBadGateway},
		{"receipt timeout", domain.ErrReceiptTimeout, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPurchaseHandler(stubSubmitter{err: tc.err}, nil, stubIdentity{}, discardLogger())
			rec := postPurchase(t, h, `{"count":1}`)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestSubmitPurchaseBadBody(t *testing.T) {
	h := NewPurchaseHandler(stubSubmitter{}, nil, stubIdentity{}, discardLogger())
	rec := postPurchase(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPurchasesRequiresAuth(t *testing.T) {
	journal := journalFunc(func(ctx context.Context, wallet string, limit int) ([]domain.PurchaseRecord, error) {
		return nil, nil
	})
	h := NewPurchaseHandler(stubSubmitter{}, journal, stubIdentity{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/purchases", nil)
	rec := httptest.NewRecorder()
	h.ListPurchases(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type journalFunc func(ctx context.Context, wallet string, limit int) ([]domain.PurchaseRecord, error)

func (f journalFunc) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.PurchaseRecord, error) {
	return f(ctx, wallet, limit)
}
