package graph

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/models"
)

const approvalItemsPath = "/solutions/approval/approvalItems"

// ApprovalsAPI handles Graph approval item operations. Every operation is a
// single forward to the external API; the workflow semantics live there.
type ApprovalsAPI struct {
	client *Client
	logger *zap.Logger
}

// NewApprovalsAPI creates a new approvals API handler.
func NewApprovalsAPI(client *Client, logger *zap.Logger) *ApprovalsAPI {
	return &ApprovalsAPI{
		client: client,
		logger: logger,
	}
}

// List retrieves all approval items visible to the application.
func (a *ApprovalsAPI) List(ctx context.Context) ([]models.ApprovalItem, error) {
	var list models.ApprovalList
	if err := a.client.doJSON(ctx, "GET", approvalItemsPath, nil, &list); err != nil {
		a.logger.Error("Failed to list approvals", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return list.Value, nil
}

// Get retrieves a single approval item.
func (a *ApprovalsAPI) Get(ctx context.Context, approvalID string) (*models.ApprovalItem, error) {
	var item models.ApprovalItem
	path := approvalItemsPath + "/" + url.PathEscape(approvalID)
	if err := a.client.doJSON(ctx, "GET", path, nil, &item); err != nil {
		a.logger.Error("Failed to get approval",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return &item, nil
}

// Create forwards a new approval item to Graph and returns the created
// record.
func (a *ApprovalsAPI) Create(ctx context.Context, approval *models.NewApproval) (*models.ApprovalItem, error) {
	var created models.ApprovalItem
	if err := a.client.doJSON(ctx, "POST", approvalItemsPath, approval, &created); err != nil {
		a.logger.Error("Failed to create approval",
			zap.String("display_name", approval.DisplayName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}
	a.logger.Info("Approval created",
		zap.String("approval_id", created.ID),
		zap.String("display_name", created.DisplayName))
	return &created, nil
}

// Respond posts a decision to the item-level responses collection.
func (a *ApprovalsAPI) Respond(ctx context.Context, approvalID, response, comments string) error {
	body := map[string]string{"response": response}
	if comments != "" {
		body["comments"] = comments
	}
	path := approvalItemsPath + "/" + url.PathEscape(approvalID) + "/responses"
	if err := a.client.doJSON(ctx, "POST", path, body, nil); err != nil {
		a.logger.Error("Failed to respond to approval",
			zap.String("approval_id", approvalID),
			zap.String("response", response),
			zap.Error(err))
		return fmt.Errorf("failed to respond to approval: %w", err)
	}
	return nil
}

// Cancel cancels an approval item.
func (a *ApprovalsAPI) Cancel(ctx context.Context, approvalID string) error {
	path := approvalItemsPath + "/" + url.PathEscape(approvalID) + "/cancel"
	if err := a.client.doJSON(ctx, "POST", path, map[string]string{}, nil); err != nil {
		a.logger.Error("Failed to cancel approval",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return fmt.Errorf("failed to cancel approval: %w", err)
	}
	a.logger.Info("Approval canceled", zap.String("approval_id", approvalID))
	return nil
}

// ListRequests retrieves the per-approver request resources of an item.
func (a *ApprovalsAPI) ListRequests(ctx context.Context, approvalID string) ([]models.ApprovalRequest, error) {
	var list models.RequestList
	path := approvalItemsPath + "/" + url.PathEscape(approvalID) + "/requests"
	if err := a.client.doJSON(ctx, "GET", path, nil, &list); err != nil {
		a.logger.Error("Failed to list approval requests",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list approval requests: %w", err)
	}
	return list.Value, nil
}

// ListResponses retrieves the responses recorded on an item.
func (a *ApprovalsAPI) ListResponses(ctx context.Context, approvalID string) ([]models.ApprovalResponse, error) {
	var list models.ResponseList
	path := approvalItemsPath + "/" + url.PathEscape(approvalID) + "/responses"
	if err := a.client.doJSON(ctx, "GET", path, nil, &list); err != nil {
		a.logger.Error("Failed to list approval responses",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list approval responses: %w", err)
	}
	return list.Value, nil
}
