package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestUploadKey(t *testing.T) {
	key := uploadKey("teamtask/chat", "Screenshot.PNG")
	assert.True(t, strings.HasPrefix(key, "teamtask/chat/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	// No extension stays bare
	key = uploadKey("uploads", "README")
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.False(t, strings.Contains(key, "."))
}

func TestUploadRejectsMissingFile(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/upload/profile", nil)

	UploadProfileImage(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No valid file field found")
	// The wrapper scopes the folder without touching the request
	assert.Empty(t, c.Request.URL.RawQuery)
}
