package models

import "time"

// SharingGrant records the outcome of granting one approver read access to
// an uploaded file.
type SharingGrant struct {
	Email        string `json:"email"`
	PermissionID string `json:"permissionId,omitempty"`
	Status       string `json:"status"` // granted | failed
	Error        string `json:"error,omitempty"`
}

// Attachment upload outcome statuses.
const (
	AttachmentUploaded = "uploaded"
	AttachmentFailed   = "failed"
)

// Attachment is a file uploaded to the owner's drive and linked to an
// approval through its metadata document. Attachments are appended, never
// independently deleted.
type Attachment struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Size        int64          `json:"size,omitempty"`
	WebURL      string         `json:"webUrl,omitempty"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
	SharingLink string         `json:"sharingLink,omitempty"`
	SharedWith  []SharingGrant `json:"sharedWith,omitempty"`
	UploadedAt  string         `json:"uploadedAt,omitempty"`
	Status      string         `json:"status,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ApproverStage assigns an ordinal stage to an approver for sequential
// display. Ordering is advisory only; nothing gates who may respond when.
type ApproverStage struct {
	Email string `json:"email"`
	Stage int    `json:"stage"`
}

// ApprovalMetadata holds the custom fields the Approvals API does not model.
// Keyed 1:1 by approval id in a separate store with no referential integrity
// against the approval item itself.
type ApprovalMetadata struct {
	ApprovalID          string          `json:"approvalId"`
	CreatorEmail        string          `json:"creatorEmail,omitempty"`
	DueDate             string          `json:"dueDate,omitempty"`
	IsSequential        bool            `json:"isSequential,omitempty"`
	ApproversWithStages []ApproverStage `json:"approversWithStages,omitempty"`
	Attachments         []Attachment    `json:"attachments,omitempty"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}
