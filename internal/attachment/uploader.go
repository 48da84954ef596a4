package attachment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/graph"
	"github.com/leowang/graph-approvals/internal/models"
)

// ErrMissingToken aborts a batch before any per-file work starts. This is
// the only whole-call failure; everything past it is captured per file.
var ErrMissingToken = errors.New("access token is required")

// Drive is the subset of the drive client the uploader needs. Satisfied by
// *graph.DriveAPI.
type Drive interface {
	UploadFile(ctx context.Context, token, folderPath, name, contentType string, content []byte) (*graph.DriveFile, error)
	CreateSharingLink(ctx context.Context, token, fileID string) (string, error)
	InviteReader(ctx context.Context, token, fileID, email string) (string, error)
}

// File is one attachment to upload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Uploader uploads attachment batches to the owner's drive and shares each
// file with the approvers. Files are processed strictly one after another;
// a failure on one file never aborts the rest.
type Uploader struct {
	drive  Drive
	logger *zap.Logger
}

// NewUploader creates a new uploader.
func NewUploader(drive Drive, logger *zap.Logger) *Uploader {
	return &Uploader{
		drive:  drive,
		logger: logger,
	}
}

// UploadAndShare uploads each file under /Approvals/{approvalID}, creates a
// view-only organization sharing link, and grants read access to each
// approver email. Per-approver grant failures are recorded on the result
// without failing the file; per-file failures are recorded without failing
// the batch.
func (u *Uploader) UploadAndShare(ctx context.Context, token string, files []File, approverEmails []string, approvalID string) ([]models.Attachment, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	folderPath := fmt.Sprintf("/Approvals/%s", approvalID)
	results := make([]models.Attachment, 0, len(files))

	for _, f := range files {
		result, err := u.processFile(ctx, token, folderPath, f, approverEmails)
		if err != nil {
			u.logger.Warn("Attachment upload failed",
				zap.String("approval_id", approvalID),
				zap.String("name", f.Name),
				zap.Error(err))
			results = append(results, models.Attachment{
				Name:   f.Name,
				Status: models.AttachmentFailed,
				Error:  err.Error(),
			})
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}

func (u *Uploader) processFile(ctx context.Context, token, folderPath string, f File, approverEmails []string) (*models.Attachment, error) {
	uploaded, err := u.drive.UploadFile(ctx, token, folderPath, f.Name, f.ContentType, f.Content)
	if err != nil {
		return nil, err
	}

	link, err := u.drive.CreateSharingLink(ctx, token, uploaded.ID)
	if err != nil {
		return nil, err
	}

	grants := make([]models.SharingGrant, 0, len(approverEmails))
	for _, email := range approverEmails {
		permissionID, err := u.drive.InviteReader(ctx, token, uploaded.ID, email)
		if err != nil {
			u.logger.Warn("Failed to grant read access",
				zap.String("file_id", uploaded.ID),
				zap.String("email", email),
				zap.Error(err))
			grants = append(grants, models.SharingGrant{
				Email:  email,
				Status: "failed",
				Error:  err.Error(),
			})
			continue
		}
		grants = append(grants, models.SharingGrant{
			Email:        email,
			PermissionID: permissionID,
			Status:       "granted",
		})
	}

	return &models.Attachment{
		ID:          uploaded.ID,
		Name:        uploaded.Name,
		Size:        uploaded.Size,
		WebURL:      uploaded.WebURL,
		DownloadURL: uploaded.DownloadURL,
		SharingLink: link,
		SharedWith:  grants,
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
		Status:      models.AttachmentUploaded,
	}, nil
}
