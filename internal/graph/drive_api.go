package graph

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DriveAPI handles OneDrive operations on behalf of the signed-in user.
// Every call runs under the caller's delegated bearer token, never the app
// token: files land in the owner's own drive.
type DriveAPI struct {
	client *Client
	logger *zap.Logger
}

// NewDriveAPI creates a new drive API handler.
func NewDriveAPI(client *Client, logger *zap.Logger) *DriveAPI {
	return &DriveAPI{
		client: client,
		logger: logger,
	}
}

// DriveFile is the subset of a driveItem this system carries.
type DriveFile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Size            int64  `json:"size"`
	WebURL          string `json:"webUrl"`
	DownloadURL     string `json:"@microsoft.graph.downloadUrl"`
	CreatedDateTime string `json:"createdDateTime"`
}

// SharingLink is the result of a createLink call.
type SharingLink struct {
	Link struct {
		WebURL string `json:"webUrl"`
	} `json:"link"`
}

// Permission is a single entry of an invite reply.
type Permission struct {
	ID string `json:"id"`
}

// escapeDrivePath encodes each segment of a drive folder path.
func escapeDrivePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(segments, "/")
}

// UploadFile uploads content to the caller's drive at folderPath/name and
// returns the created item.
func (d *DriveAPI) UploadFile(ctx context.Context, token, folderPath, name, contentType string, content []byte) (*DriveFile, error) {
	var file DriveFile
	path := fmt.Sprintf("/me/drive/root:%s:/content", escapeDrivePath(folderPath+"/"+name))
	if err := d.client.doRaw(ctx, "PUT", path, token, contentType, content, &file); err != nil {
		d.logger.Error("Failed to upload file to drive",
			zap.String("name", name),
			zap.String("folder", folderPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to upload file to drive: %w", err)
	}
	d.logger.Info("File uploaded to drive",
		zap.String("file_id", file.ID),
		zap.String("name", file.Name),
		zap.Int64("size", file.Size))
	return &file, nil
}

// CreateSharingLink creates a view-only link scoped to the owning
// organization for an uploaded file.
func (d *DriveAPI) CreateSharingLink(ctx context.Context, token, fileID string) (string, error) {
	body := map[string]string{
		"type":  "view",
		"scope": "organization",
	}
	var link SharingLink
	path := "/me/drive/items/" + url.PathEscape(fileID) + "/createLink"
	if err := d.client.doJSONWithToken(ctx, "POST", path, token, body, &link); err != nil {
		d.logger.Error("Failed to create sharing link",
			zap.String("file_id", fileID),
			zap.Error(err))
		return "", fmt.Errorf("failed to create sharing link: %w", err)
	}
	return link.Link.WebURL, nil
}

// InviteReader grants one recipient read access to a file and returns the
// created permission id when the reply carries one.
func (d *DriveAPI) InviteReader(ctx context.Context, token, fileID, email string) (string, error) {
	body := map[string]interface{}{
		"recipients":     []map[string]string{{"email": email}},
		"message":        "This file is attached to an approval request that requires your review.",
		"requireSignIn":  true,
		"sendInvitation": true,
		"roles":          []string{"read"},
	}
	var reply struct {
		Value []Permission `json:"value"`
	}
	path := "/me/drive/items/" + url.PathEscape(fileID) + "/invite"
	if err := d.client.doJSONWithToken(ctx, "POST", path, token, body, &reply); err != nil {
		return "", fmt.Errorf("failed to grant read access: %w", err)
	}
	if len(reply.Value) > 0 {
		return reply.Value[0].ID, nil
	}
	return "", nil
}

// DeleteFile removes a file from the caller's drive.
func (d *DriveAPI) DeleteFile(ctx context.Context, token, fileID string) error {
	path := "/me/drive/items/" + url.PathEscape(fileID)
	if err := d.client.doJSONWithToken(ctx, "DELETE", path, token, nil, nil); err != nil {
		d.logger.Error("Failed to delete drive file",
			zap.String("file_id", fileID),
			zap.Error(err))
		return fmt.Errorf("failed to delete drive file: %w", err)
	}
	return nil
}

// GetFileMetadata reads a drive item back.
func (d *DriveAPI) GetFileMetadata(ctx context.Context, token, fileID string) (*DriveFile, error) {
	var file DriveFile
	path := "/me/drive/items/" + url.PathEscape(fileID)
	if err := d.client.doJSONWithToken(ctx, "GET", path, token, nil, &file); err != nil {
		return nil, fmt.Errorf("failed to get drive file metadata: %w", err)
	}
	return &file, nil
}
