package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/classifier"
	"github.com/leowang/graph-approvals/internal/identity"
	"github.com/leowang/graph-approvals/internal/models"
)

// RespondRequest is the body of POST /api/approvals/:id/respond. UserID is
// optional; absent, the identity comes from the bearer token.
type RespondRequest struct {
	Response string `json:"response" binding:"required"`
	Comments string `json:"comments"`
	UserID   string `json:"userId"`
}

// ListApprovals handles GET /api/approvals. Plain passthrough of the Graph
// list; with a classifyFor parameter (or a bearer identity) the reply also
// carries the classified buckets and their exposed actions.
func (h *Handlers) ListApprovals(c *gin.Context) {
	items, err := h.approvals.List(c.Request.Context())
	if err != nil {
		writeError(c, "Failed to fetch approvals", err)
		return
	}
	if items == nil {
		items = []models.ApprovalItem{}
	}

	userID := h.currentUser(c, c.Query("classifyFor"))
	if userID == "" {
		c.JSON(http.StatusOK, models.ApprovalList{Value: items})
		return
	}

	buckets := classifier.Classify(items, userID)
	c.JSON(http.StatusOK, gin.H{
		"value":   items,
		"buckets": buckets,
		"actions": gin.H{
			classifier.BucketApproverPending:   classifier.ActionsFor(classifier.BucketApproverPending),
			classifier.BucketApproverCompleted: classifier.ActionsFor(classifier.BucketApproverCompleted),
			classifier.BucketOwnerPending:      classifier.ActionsFor(classifier.BucketOwnerPending),
			classifier.BucketOwnerCompleted:    classifier.ActionsFor(classifier.BucketOwnerCompleted),
		},
	})
}

// GetApproval handles GET /api/approvals/:id
func (h *Handlers) GetApproval(c *gin.Context) {
	item, err := h.approvals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "Failed to fetch approval", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateApproval handles POST /api/approvals
func (h *Handlers) CreateApproval(c *gin.Context) {
	var req models.NewApproval
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "displayName and approvers are required")
		return
	}

	created, err := h.approvals.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, "Failed to create approval", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// RespondToApproval handles POST /api/approvals/:id/respond
func (h *Handlers) RespondToApproval(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "response is required")
		return
	}

	decision := normalizeDecision(req.Response)
	if decision == "" {
		writeValidationError(c, "response must be approve or reject")
		return
	}

	userID := h.currentUser(c, req.UserID)
	if userID == "" {
		writeValidationError(c, "userId or bearer token is required")
		return
	}

	item, err := h.responder.Respond(c.Request.Context(), c.Param("id"), userID, decision, req.Comments)
	if err != nil {
		writeError(c, "Failed to respond to approval", err)
		return
	}

	reply := gin.H{"success": true}
	if item != nil {
		reply["approval"] = item
	}
	c.JSON(http.StatusOK, reply)
}

// CancelApproval handles POST /api/approvals/:id/cancel. Metadata for the
// canceled item is removed best-effort so the two stores do not drift; a
// cleanup failure is logged, not surfaced.
func (h *Handlers) CancelApproval(c *gin.Context) {
	approvalID := c.Param("id")
	if err := h.approvals.Cancel(c.Request.Context(), approvalID); err != nil {
		writeError(c, "Failed to cancel approval", err)
		return
	}

	if _, err := h.metadata.Delete(approvalID); err != nil {
		h.logger.Warn("Failed to delete metadata for canceled approval",
			zap.String("approval_id", approvalID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListApprovalResponses handles GET /api/approvals/:id/responses
func (h *Handlers) ListApprovalResponses(c *gin.Context) {
	responses, err := h.approvals.ListResponses(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "Failed to fetch approval responses", err)
		return
	}
	c.JSON(http.StatusOK, models.ResponseList{Value: responses})
}

// currentUser resolves the acting identity: explicit parameter first, then
// the bearer token's claims.
func (h *Handlers) currentUser(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	userID, err := identity.FromBearer(c.GetHeader("Authorization"))
	if err != nil {
		return ""
	}
	return userID
}

func normalizeDecision(response string) string {
	switch response {
	case models.DecisionApprove, models.ResultApproved:
		return models.DecisionApprove
	case models.DecisionReject, models.ResultRejected:
		return models.DecisionReject
	}
	return ""
}
