package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattbennet/lentra/internal/auth"
	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/repository"
)

// mockQueries serves a single account and records which account ID each
// query was asked for.
type mockQueries struct {
	account   *domain.Account
	askedFor  []uuid.UUID
	transfers []domain.Transfer
}

func (m *mockQueries) GetBalance(_ context.Context, accountID uuid.UUID) (int64, error) {
	m.askedFor = append(m.askedFor, accountID)
	return m.account.Balance, nil
}

func (m *mockQueries) GetLoan(_ context.Context, accountID uuid.UUID) (domain.LoanSnapshot, error) {
	m.askedFor = append(m.askedFor, accountID)
	return domain.LoanSnapshot{}, nil
}

func (m *mockQueries) GetAvailableBorrow(_ context.Context, accountID uuid.UUID) (int64, error) {
	m.askedFor = append(m.askedFor, accountID)
	return 0, nil
}

func (m *mockQueries) GetTransfers(_ context.Context, accountID uuid.UUID, _, _ int) ([]domain.Transfer, error) {
	m.askedFor = append(m.askedFor, accountID)
	return m.transfers, nil
}

func (m *mockQueries) GetTotals(_ context.Context) (*repository.LedgerTotals, error) {
	return &repository.LedgerTotals{}, nil
}

func (m *mockQueries) GetAccountByUserID(_ context.Context, userID uuid.UUID) (*domain.Account, error) {
	if m.account != nil && m.account.UserID == userID {
		return m.account, nil
	}
	return nil, domain.ErrNotFound
}

func queryRequest(path string, pathID uuid.UUID, claims *auth.Claims) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.SetPathValue("id", pathID.String())
	return req.WithContext(auth.ContextWithClaims(req.Context(), claims))
}

func TestQueryOwnership(t *testing.T) {
	owner := &auth.Claims{UserID: uuid.New(), Email: "alice@test.com", Role: domain.RoleUser}
	account := &domain.Account{ID: uuid.New(), UserID: owner.UserID, Balance: 9999}

	stranger := &auth.Claims{UserID: uuid.New(), Email: "mallory@test.com", Role: domain.RoleUser}
	admin := &auth.Claims{UserID: uuid.New(), Email: "ops@test.com", Role: domain.RoleAdmin}

	endpoints := []struct {
		name    string
		path    string
		handler func(h *QueryHandler) http.HandlerFunc
	}{
		{"balance", "/api/v1/accounts/{id}/balance", func(h *QueryHandler) http.HandlerFunc { return h.Balance }},
		{"loan", "/api/v1/accounts/{id}/loan", func(h *QueryHandler) http.HandlerFunc { return h.Loan }},
		{"available-borrow", "/api/v1/accounts/{id}/available-borrow", func(h *QueryHandler) http.HandlerFunc { return h.AvailableBorrow }},
		{"transfers", "/api/v1/accounts/{id}/transfers", func(h *QueryHandler) http.HandlerFunc { return h.Transfers }},
	}

	for _, ep := range endpoints {
		t.Run(ep.name+" owner allowed", func(t *testing.T) {
			queries := &mockQueries{account: account}
			h := NewQueryHandler(queries)
			rr := httptest.NewRecorder()

			ep.handler(h)(rr, queryRequest(ep.path, account.ID, owner))

			assert.Equal(t, http.StatusOK, rr.Code)
			require.Len(t, queries.askedFor, 1)
			assert.Equal(t, account.ID, queries.askedFor[0])
		})

		t.Run(ep.name+" stranger gets 404", func(t *testing.T) {
			queries := &mockQueries{account: account}
			h := NewQueryHandler(queries)
			rr := httptest.NewRecorder()

			ep.handler(h)(rr, queryRequest(ep.path, account.ID, stranger))

			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Empty(t, queries.askedFor)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
		})

		t.Run(ep.name+" admin allowed", func(t *testing.T) {
			queries := &mockQueries{account: account}
			h := NewQueryHandler(queries)
			rr := httptest.NewRecorder()

			ep.handler(h)(rr, queryRequest(ep.path, account.ID, admin))

			assert.Equal(t, http.StatusOK, rr.Code)
			require.Len(t, queries.askedFor, 1)
		})
	}
}

// A caller who owns no account yet cannot probe other IDs either: the guard
// 404s before any query runs.
func TestQueryOwnership_NoAccountYet(t *testing.T) {
	someone := &auth.Claims{UserID: uuid.New(), Email: "new@test.com", Role: domain.RoleUser}
	queries := &mockQueries{}
	h := NewQueryHandler(queries)
	rr := httptest.NewRecorder()

	h.Balance(rr, queryRequest("/api/v1/accounts/{id}/balance", uuid.New(), someone))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, queries.askedFor)
}

func TestQueryOwnership_MalformedID(t *testing.T) {
	owner := &auth.Claims{UserID: uuid.New(), Email: "alice@test.com", Role: domain.RoleUser}
	queries := &mockQueries{account: &domain.Account{ID: uuid.New(), UserID: owner.UserID}}
	h := NewQueryHandler(queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/{id}/balance", nil)
	req.SetPathValue("id", "not-a-uuid")
	req = req.WithContext(auth.ContextWithClaims(req.Context(), owner))
	rr := httptest.NewRecorder()

	h.Balance(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
