package classifier

import (
	"strings"

	"github.com/leowang/graph-approvals/internal/models"
)

// Buckets partitions the approval items visible to a user by role and
// completion. An item can appear in both an approver bucket and an owner
// bucket, but never in both the pending and completed bucket of one role.
type Buckets struct {
	ApproverPending   []models.ApprovalItem `json:"approverPending"`
	ApproverCompleted []models.ApprovalItem `json:"approverCompleted"`
	OwnerPending      []models.ApprovalItem `json:"ownerPending"`
	OwnerCompleted    []models.ApprovalItem `json:"ownerCompleted"`
}

// Action is a UI operation exposed for an item in a given bucket.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// Bucket names used for action lookup.
const (
	BucketApproverPending   = "approverPending"
	BucketApproverCompleted = "approverCompleted"
	BucketOwnerPending      = "ownerPending"
	BucketOwnerCompleted    = "ownerCompleted"
)

// NormalizeID canonicalizes a user identity for comparison. Identities are
// directory ids or emails; matching is case-insensitive string equality
// only, no fuzzy matching.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameIdentity reports whether two identity strings refer to the same user.
func SameIdentity(a, b string) bool {
	return a != "" && NormalizeID(a) == NormalizeID(b)
}

// IsCompleted derives completion from the item's two nullable fields. Kept
// as a computed predicate rather than a stored value so the two cannot
// drift.
func IsCompleted(item *models.ApprovalItem) bool {
	if item.State == models.StateCompleted {
		return true
	}
	return item.Result != "" && item.Result != models.ResultPending
}

// IsApprover reports whether the user appears in the item's approvers list.
func IsApprover(item *models.ApprovalItem, userID string) bool {
	for i := range item.Approvers {
		if SameIdentity(item.Approvers[i].UserID(), userID) {
			return true
		}
	}
	return false
}

// IsOwner reports whether the user owns the item.
func IsOwner(item *models.ApprovalItem, userID string) bool {
	return SameIdentity(item.Owner.UserID(), userID)
}

// Classify partitions items for the given user. The partition is stable:
// each bucket preserves the ordering of the input slice. Items where the
// user is both approver and owner land in the owner buckets only.
func Classify(items []models.ApprovalItem, currentUserID string) Buckets {
	b := Buckets{
		ApproverPending:   []models.ApprovalItem{},
		ApproverCompleted: []models.ApprovalItem{},
		OwnerPending:      []models.ApprovalItem{},
		OwnerCompleted:    []models.ApprovalItem{},
	}

	for i := range items {
		item := items[i]
		approver := IsApprover(&item, currentUserID)
		owner := IsOwner(&item, currentUserID)
		completed := IsCompleted(&item)

		if approver && !owner {
			if completed {
				b.ApproverCompleted = append(b.ApproverCompleted, item)
			} else {
				b.ApproverPending = append(b.ApproverPending, item)
			}
		}
		if owner {
			if completed {
				b.OwnerCompleted = append(b.OwnerCompleted, item)
			} else {
				b.OwnerPending = append(b.OwnerPending, item)
			}
		}
	}

	return b
}

// ActionsFor returns the operations exposed for items of a bucket. Pending
// approver items take a decision, pending owner items can only be canceled,
// completed items take nothing.
func ActionsFor(bucket string) []Action {
	switch bucket {
	case BucketApproverPending:
		return []Action{ActionApprove, ActionReject}
	case BucketOwnerPending:
		return []Action{ActionCancel}
	}
	return nil
}
