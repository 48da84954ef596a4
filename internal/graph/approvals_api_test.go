package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/leowang/graph-approvals/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
	}, zap.NewNop())
	c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "app-token"}))
	return c
}

func TestApprovalsList(t *testing.T) {
	var gotAuth string
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/solutions/approval/approvalItems", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(models.ApprovalList{Value: []models.ApprovalItem{
			{ID: "A", DisplayName: "Purchase Request", Result: models.ResultPending},
		}})
	})), zap.NewNop())

	items, err := api.List(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)
	assert.Equal(t, "Bearer app-token", gotAuth)
}

func TestApprovalsGet(t *testing.T) {
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/solutions/approval/approvalItems/appr-1", r.URL.Path)
		json.NewEncoder(w).Encode(models.ApprovalItem{
			ID:    "appr-1",
			State: models.StateCompleted,
			Owner: &models.IdentitySet{User: &models.Identity{ID: "alice@contoso.com"}},
		})
	})), zap.NewNop())

	item, err := api.Get(context.Background(), "appr-1")

	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, item.State)
	assert.Equal(t, "alice@contoso.com", item.Owner.UserID())
}

func TestApprovalsCreate(t *testing.T) {
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload models.NewApproval
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Purchase Request", payload.DisplayName)
		require.Len(t, payload.Approvers, 1)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.ApprovalItem{ID: "new-id", DisplayName: payload.DisplayName})
	})), zap.NewNop())

	created, err := api.Create(context.Background(), &models.NewApproval{
		DisplayName: "Purchase Request",
		Approvers: []models.Approver{
			{IdentitySet: models.IdentitySet{User: &models.Identity{ID: "bob@contoso.com"}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
}

func TestApprovalsRespondTargetsItemLevelEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	})), zap.NewNop())

	err := api.Respond(context.Background(), "appr-1", models.DecisionApprove, "fine by me")

	require.NoError(t, err)
	assert.Equal(t, "/solutions/approval/approvalItems/appr-1/responses", gotPath)
	assert.Equal(t, models.DecisionApprove, gotBody["response"])
	assert.Equal(t, "fine by me", gotBody["comments"])
}

func TestApprovalsCancel(t *testing.T) {
	var gotPath string
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})), zap.NewNop())

	err := api.Cancel(context.Background(), "appr-1")

	require.NoError(t, err)
	assert.Equal(t, "/solutions/approval/approvalItems/appr-1/cancel", gotPath)
}

func TestApprovalsListRequests(t *testing.T) {
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/solutions/approval/approvalItems/appr-1/requests", r.URL.Path)
		json.NewEncoder(w).Encode(models.RequestList{Value: []models.ApprovalRequest{
			{ID: "r1", Status: models.RequestStatusPending,
				Approver: &models.IdentitySet{User: &models.Identity{ID: "bob@contoso.com"}}},
		}})
	})), zap.NewNop())

	requests, err := api.ListRequests(context.Background(), "appr-1")

	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.True(t, requests[0].Open())
}

func TestGraphErrorEnvelopeDecoded(t *testing.T) {
	api := NewApprovalsAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges"}}`))
	})), zap.NewNop())

	_, err := api.List(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Authorization_RequestDenied", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Insufficient privileges")
}
