package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leowang/graph-approvals/internal/attachment"
	"github.com/leowang/graph-approvals/internal/models"
	"github.com/leowang/graph-approvals/internal/repository"
	"github.com/leowang/graph-approvals/pkg/utils"
)

// SuccessResponse is the envelope metadata endpoints reply with.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SaveMetadataRequest is the body of POST /api/metadata.
type SaveMetadataRequest struct {
	ApprovalID string                  `json:"approvalId" binding:"required"`
	Metadata   models.ApprovalMetadata `json:"metadata"`
}

// SaveMetadata handles POST /api/metadata
func (h *Handlers) SaveMetadata(c *gin.Context) {
	var req SaveMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "approvalId is required")
		return
	}

	req.Metadata.ApprovalID = req.ApprovalID
	saved, err := h.metadata.Save(&req.Metadata)
	if err != nil {
		writeError(c, "Failed to save metadata", err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: saved})
}

// GetMetadata handles GET /api/metadata/:approvalId
func (h *Handlers) GetMetadata(c *gin.Context) {
	meta, err := h.metadata.Get(c.Param("approvalId"))
	if err != nil {
		writeError(c, "Failed to get metadata", err)
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Metadata not found"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: meta})
}

// ListMetadata handles GET /api/metadata with an optional creatorEmail
// equality filter.
func (h *Handlers) ListMetadata(c *gin.Context) {
	docs, err := h.metadata.List(repository.ListFilter{
		CreatorEmail: c.Query("creatorEmail"),
	})
	if err != nil {
		writeError(c, "Failed to get metadata", err)
		return
	}
	if docs == nil {
		docs = []*models.ApprovalMetadata{}
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: docs})
}

// PatchMetadata handles PATCH /api/metadata/:approvalId
func (h *Handlers) PatchMetadata(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		writeValidationError(c, "request body must be a JSON object")
		return
	}

	patched, err := h.metadata.Patch(c.Param("approvalId"), fields)
	if err != nil {
		writeError(c, "Failed to update metadata", err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: patched})
}

// DeleteMetadata handles DELETE /api/metadata/:approvalId
func (h *Handlers) DeleteMetadata(c *gin.Context) {
	existed, err := h.metadata.Delete(c.Param("approvalId"))
	if err != nil {
		writeError(c, "Failed to delete metadata", err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Metadata not found"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Metadata deleted successfully"})
}

// UploadAttachments handles POST /api/metadata/:approvalId/attachments.
// Multipart form: files[], accessToken, approverEmails (JSON-encoded array
// string). Uploaded files are merged into the stored metadata document.
func (h *Handlers) UploadAttachments(c *gin.Context) {
	approvalID := c.Param("approvalId")

	form, err := c.MultipartForm()
	if err != nil {
		writeValidationError(c, "multipart form is required")
		return
	}

	token := c.PostForm("accessToken")
	if token == "" {
		writeValidationError(c, "Access token is required")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		writeValidationError(c, "No files uploaded")
		return
	}
	if len(fileHeaders) > h.cfg.MaxFiles {
		writeValidationError(c, "too many files in one batch")
		return
	}

	var approverEmails []string
	if raw := c.PostForm("approverEmails"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &approverEmails); err != nil {
			writeValidationError(c, "approverEmails must be a JSON array of strings")
			return
		}
	}
	for _, email := range approverEmails {
		if err := utils.ValidateEmail(email); err != nil {
			writeValidationError(c, err.Error())
			return
		}
	}

	files := make([]attachment.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > h.cfg.MaxFileSize {
			writeValidationError(c, "file exceeds the size limit: "+fh.Filename)
			return
		}
		src, err := fh.Open()
		if err != nil {
			writeError(c, "Failed to read uploaded file", err)
			return
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			writeError(c, "Failed to read uploaded file", err)
			return
		}
		files = append(files, attachment.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	results, err := h.uploader.UploadAndShare(c.Request.Context(), token, files, approverEmails, approvalID)
	if err != nil {
		writeError(c, "Failed to upload attachments", err)
		return
	}

	meta, err := h.metadata.Get(approvalID)
	if err != nil {
		writeError(c, "Failed to upload attachments", err)
		return
	}
	if meta == nil {
		meta = &models.ApprovalMetadata{ApprovalID: approvalID}
	}
	for _, res := range results {
		if res.Status == models.AttachmentUploaded {
			meta.Attachments = append(meta.Attachments, res)
		}
	}

	saved, err := h.metadata.Save(meta)
	if err != nil {
		writeError(c, "Failed to upload attachments", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: gin.H{
			"metadata":      saved,
			"uploadedFiles": results,
		},
	})
}
