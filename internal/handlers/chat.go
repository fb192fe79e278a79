package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/Ernie1234/team-task-backend/pkg/errors"
	"github.com/gin-gonic/gin"
)

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func respondServiceError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// GetWorkspaceMessages returns paginated workspace chat history
func GetWorkspaceMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	page, err := services.GetMessages(services.MessagesQuery{
		ChatType:    models.ChatTypeWorkspace,
		WorkspaceID: workspaceID,
		Limit:       intQuery(c, "limit", 0),
		Skip:        intQuery(c, "skip", 0),
		Before:      c.Query("before"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": page.Messages,
		"pagination": gin.H{
			"hasMore": page.HasMore,
			"total":   page.Total,
		},
	})
}

// GetProjectMessages returns paginated project chat history
func GetProjectMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")

	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}

	page, err := services.GetMessages(services.MessagesQuery{
		ChatType:  models.ChatTypeProject,
		ProjectID: projectID,
		Limit:     intQuery(c, "limit", 0),
		Skip:      intQuery(c, "skip", 0),
		Before:    c.Query("before"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": page.Messages,
		"pagination": gin.H{
			"hasMore": page.HasMore,
			"total":   page.Total,
		},
	})
}

// GetDirectMessages returns paginated direct history with another user.
// No membership check: direct chat is open to any authenticated user.
func GetDirectMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	otherUserID := c.Param("otherUserId")

	participants := []string{userID, otherUserID}
	sort.Strings(participants)

	page, err := services.GetMessages(services.MessagesQuery{
		ChatType:     models.ChatTypeDirect,
		Participants: participants,
		Limit:        intQuery(c, "limit", 0),
		Skip:         intQuery(c, "skip", 0),
		Before:       c.Query("before"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": page.Messages,
		"pagination": gin.H{
			"hasMore": page.HasMore,
			"total":   page.Total,
		},
	})
}

type sendMessageRequest struct {
	Content     string  `json:"content" binding:"required"`
	MessageType string  `json:"messageType"`
	ReplyTo     *string `json:"replyTo"`
}

// checkChatRate applies the per-user send limit shared by the HTTP path
func checkChatRate(c *gin.Context, userID string) bool {
	ok, _ := database.CheckRateLimit("chat:"+userID, 30, time.Minute)
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please slow down."})
		return false
	}
	return true
}

// SendWorkspaceMessage posts a message into workspace chat over HTTP
func SendWorkspaceMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}
	if !checkChatRate(c, userID) {
		return
	}

	message, err := services.CreateMessage(services.CreateMessageInput{
		Content:     req.Content,
		SenderID:    userID,
		ChatType:    models.ChatTypeWorkspace,
		WorkspaceID: workspaceID,
		MessageType: models.MessageType(req.MessageType),
		ReplyToID:   req.ReplyTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": message})
}

// SendProjectMessage posts a message into project chat over HTTP
func SendProjectMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}
	if !checkChatRate(c, userID) {
		return
	}

	message, err := services.CreateMessage(services.CreateMessageInput{
		Content:     req.Content,
		SenderID:    userID,
		ChatType:    models.ChatTypeProject,
		ProjectID:   projectID,
		WorkspaceID: services.ProjectWorkspaceID(projectID),
		MessageType: models.MessageType(req.MessageType),
		ReplyToID:   req.ReplyTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": message})
}

// SendDirectMessage posts a direct message over HTTP
func SendDirectMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	otherUserID := c.Param("otherUserId")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}
	if !checkChatRate(c, userID) {
		return
	}

	message, err := services.CreateMessage(services.CreateMessageInput{
		Content:      req.Content,
		SenderID:     userID,
		ChatType:     models.ChatTypeDirect,
		Participants: []string{userID, otherUserID},
		MessageType:  models.MessageType(req.MessageType),
		ReplyToID:    req.ReplyTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": message})
}

// SearchWorkspaceMessages searches within workspace chat
func SearchWorkspaceMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")
	q := c.Query("q")

	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	messages, err := services.SearchMessages(models.ChatTypeWorkspace, q, workspaceID, "", nil, intQuery(c, "limit", 0))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "query": q})
}

// SearchProjectMessages searches within project chat
func SearchProjectMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")
	q := c.Query("q")

	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}

	messages, err := services.SearchMessages(models.ChatTypeProject, q, "", projectID, nil, intQuery(c, "limit", 0))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "query": q})
}

// GetOnlineUsers lists workspace members currently flagged online
func GetOnlineUsers(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	online, err := services.GetOnlineUsers(workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"onlineUsers": online})
}

// GetChatMembers lists all workspace members with presence fields
func GetChatMembers(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	members, err := services.GetWorkspaceChatMembers(workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// GetWorkspaceStats serves the workspace analytics snapshot, recomputed
// on demand
func GetWorkspaceStats(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	stats, err := services.GetWorkspaceStats(workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetDirectConversations lists the caller's direct threads
func GetDirectConversations(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	conversations, err := services.GetDirectConversations(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// MarkMessagesRead refreshes the caller's lastSeen
func MarkMessagesRead(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req struct {
		LastMessageID string `json:"lastMessageId"`
	}
	c.ShouldBindJSON(&req)

	if err := services.MarkMessagesRead(userID, req.LastMessageID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true})
}
