package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leowang/graph-approvals/internal/attachment"
	"github.com/leowang/graph-approvals/internal/classifier"
	"github.com/leowang/graph-approvals/internal/repository"
)

// ErrorResponse is the failure envelope: a short error label plus the
// upstream message passed through verbatim.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps the error taxonomy onto status codes: validation 400,
// not-found 404, response preconditions 409, everything upstream 500 with
// the original message.
func writeError(c *gin.Context, label string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, attachment.ErrMissingToken):
		status = http.StatusBadRequest
	case errors.Is(err, classifier.ErrNoRequests),
		errors.Is(err, classifier.ErrRequestNotFound),
		errors.Is(err, classifier.ErrAlreadyCompleted):
		status = http.StatusConflict
	}

	c.JSON(status, ErrorResponse{
		Error:   label,
		Message: err.Error(),
	})
}

func writeValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
