package models

// Approval type values as returned by the Graph Approvals API.
const (
	ApprovalTypeBasic         = "basic"         // any single approver decides
	ApprovalTypeBasicAwaitAll = "basicAwaitAll" // all approvers must approve
)

// Approval item lifecycle states.
const (
	StateInProgress = "inProgress"
	StateCompleted  = "completed"
)

// Overall approval results.
const (
	ResultPending  = "pending"
	ResultApproved = "approved"
	ResultRejected = "rejected"
)

// Per-approver request statuses. A request in any of the first three is
// still open for a response.
const (
	RequestStatusPending    = "pending"
	RequestStatusNotStarted = "notStarted"
	RequestStatusInProgress = "inProgress"
	RequestStatusCompleted  = "completed"
)

// Decision values accepted by the responses endpoint.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Identity is a directory object id or email string inside an identity set.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// IdentitySet wraps an identity the way Graph nests it under "user".
type IdentitySet struct {
	User *Identity `json:"user,omitempty"`
}

// UserID returns the identity string of the set, or "" when absent.
func (s *IdentitySet) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// ApproverResponse is the recorded decision of a single approver.
type ApproverResponse struct {
	Decision          string `json:"decision,omitempty"`
	RespondedDateTime string `json:"respondedDateTime,omitempty"`
	Justification     string `json:"justification,omitempty"`
}

// Approver is an entry in an approval item's approvers list.
type Approver struct {
	IdentitySet
	Response *ApproverResponse `json:"response,omitempty"`
}

// ApprovalItem is a workflow record owned and mutated exclusively by the
// Graph Approvals API. This system treats it as read-mostly and writes only
// through create/respond/cancel calls.
type ApprovalItem struct {
	ID                     string       `json:"id"`
	DisplayName            string       `json:"displayName"`
	Description            string       `json:"description,omitempty"`
	ApprovalType           string       `json:"approvalType,omitempty"`
	State                  string       `json:"state,omitempty"`
	Result                 string       `json:"result,omitempty"`
	CreatedDateTime        string       `json:"createdDateTime,omitempty"`
	CompletedDateTime      string       `json:"completedDateTime,omitempty"`
	AllowEmailNotification bool         `json:"allowEmailNotification,omitempty"`
	Owner                  *IdentitySet `json:"owner,omitempty"`
	Approvers              []Approver   `json:"approvers,omitempty"`
}

// ApprovalRequest is the per-approver request resource under an approval
// item. Used only for response precondition checks; decisions are submitted
// at item level.
type ApprovalRequest struct {
	ID          string       `json:"id"`
	Approver    *IdentitySet `json:"approver,omitempty"`
	Status      string       `json:"status,omitempty"`
	IsCompleted bool         `json:"isCompleted,omitempty"`
}

// Open reports whether the request can still receive a response.
func (r *ApprovalRequest) Open() bool {
	if r.IsCompleted {
		return false
	}
	switch r.Status {
	case RequestStatusPending, RequestStatusNotStarted, RequestStatusInProgress, "":
		return true
	}
	return false
}

// ApprovalList is the Graph collection envelope for approval items.
type ApprovalList struct {
	Value []ApprovalItem `json:"value"`
}

// RequestList is the Graph collection envelope for per-approver requests.
type RequestList struct {
	Value []ApprovalRequest `json:"value"`
}

// ApprovalResponse is an entry of the item-level responses collection.
type ApprovalResponse struct {
	ID        string       `json:"id,omitempty"`
	Response  string       `json:"response,omitempty"`
	Comments  string       `json:"comments,omitempty"`
	CreatedBy *IdentitySet `json:"createdBy,omitempty"`
}

// ResponseList is the Graph collection envelope for responses.
type ResponseList struct {
	Value []ApprovalResponse `json:"value"`
}

// NewApproval is the payload to create an approval item.
type NewApproval struct {
	DisplayName            string       `json:"displayName" binding:"required"`
	Description            string       `json:"description,omitempty"`
	ApprovalType           string       `json:"approvalType,omitempty"`
	AllowEmailNotification bool         `json:"allowEmailNotification,omitempty"`
	Approvers              []Approver   `json:"approvers" binding:"required"`
	Owner                  *IdentitySet `json:"owner,omitempty"`
}
