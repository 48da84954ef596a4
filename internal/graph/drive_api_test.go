package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDriveUploadFileUsesDelegatedToken(t *testing.T) {
	var gotAuth, gotPath, gotContentType string
	var gotBody []byte
	api := NewDriveAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPut, r.Method)
		json.NewEncoder(w).Encode(DriveFile{ID: "f1", Name: "report.pdf", Size: 11})
	})), zap.NewNop())

	file, err := api.UploadFile(context.Background(), "user-token", "/Approvals/appr-1", "report.pdf", "application/pdf", []byte("pdf content"))

	require.NoError(t, err)
	assert.Equal(t, "f1", file.ID)
	// Delegated token, not the app token.
	assert.Equal(t, "Bearer user-token", gotAuth)
	assert.Equal(t, "/me/drive/root:/Approvals/appr-1/report.pdf:/content", gotPath)
	assert.Equal(t, "application/pdf", gotContentType)
	assert.Equal(t, []byte("pdf content"), gotBody)
}

func TestDriveCreateSharingLink(t *testing.T) {
	var gotBody map[string]string
	api := NewDriveAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/drive/items/f1/createLink", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"link":{"webUrl":"https://contoso.sharepoint.com/share/f1"}}`))
	})), zap.NewNop())

	link, err := api.CreateSharingLink(context.Background(), "user-token", "f1")

	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com/share/f1", link)
	assert.Equal(t, "view", gotBody["type"])
	assert.Equal(t, "organization", gotBody["scope"])
}

func TestDriveInviteReader(t *testing.T) {
	var gotBody map[string]interface{}
	api := NewDriveAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/drive/items/f1/invite", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"value":[{"id":"perm-1"}]}`))
	})), zap.NewNop())

	permissionID, err := api.InviteReader(context.Background(), "user-token", "f1", "bob@contoso.com")

	require.NoError(t, err)
	assert.Equal(t, "perm-1", permissionID)
	assert.Equal(t, []interface{}{"read"}, gotBody["roles"])
	assert.Equal(t, true, gotBody["requireSignIn"])
}

func TestDriveDeleteFile(t *testing.T) {
	var gotMethod, gotPath string
	api := NewDriveAPI(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})), zap.NewNop())

	err := api.DeleteFile(context.Background(), "user-token", "f1")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/me/drive/items/f1", gotPath)
}
