package classifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/models"
)

// ApprovalsAPI is the subset of the Graph approvals client the responder
// needs. Satisfied by *graph.ApprovalsAPI.
type ApprovalsAPI interface {
	Get(ctx context.Context, approvalID string) (*models.ApprovalItem, error)
	ListRequests(ctx context.Context, approvalID string) ([]models.ApprovalRequest, error)
	Respond(ctx context.Context, approvalID, response, comments string) error
}

// Responder submits approval decisions after checking the caller's
// per-approver request is still open. Decisions go to the item-level
// responses endpoint; the request resource is read only for the
// precondition check.
type Responder struct {
	api    ApprovalsAPI
	logger *zap.Logger
}

// NewResponder creates a responder over the given approvals client.
func NewResponder(api ApprovalsAPI, logger *zap.Logger) *Responder {
	return &Responder{
		api:    api,
		logger: logger,
	}
}

// Respond submits decision ("approve" or "reject") with an optional comment
// on behalf of currentUserID. It returns the re-fetched item when the
// refresh succeeds; a refresh failure does not roll back the response and
// yields a nil item with no error.
func (r *Responder) Respond(ctx context.Context, approvalID, currentUserID, decision, comment string) (*models.ApprovalItem, error) {
	requests, err := r.api.ListRequests(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approver requests: %w", err)
	}
	if len(requests) == 0 {
		return nil, ErrNoRequests
	}

	var matched *models.ApprovalRequest
	for i := range requests {
		if SameIdentity(requests[i].Approver.UserID(), currentUserID) {
			matched = &requests[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrRequestNotFound
	}
	if !matched.Open() {
		return nil, ErrAlreadyCompleted
	}

	if err := r.api.Respond(ctx, approvalID, decision, comment); err != nil {
		return nil, fmt.Errorf("failed to submit response: %w", err)
	}

	r.logger.Info("Approval response submitted",
		zap.String("approval_id", approvalID),
		zap.String("user_id", NormalizeID(currentUserID)),
		zap.String("decision", decision))

	// Best-effort refresh to surface the updated state.
	item, err := r.api.Get(ctx, approvalID)
	if err != nil {
		r.logger.Warn("Failed to refresh approval after response",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return nil, nil
	}
	return item, nil
}
