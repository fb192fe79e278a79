package realtime

import (
	"testing"

	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "workspace:ws1", WorkspaceRoom("ws1"))
	assert.Equal(t, "project:p1", ProjectRoom("p1"))
}

func TestDirectRoomSymmetry(t *testing.T) {
	// Both participants must compute the same room
	assert.Equal(t, DirectRoom("alice", "bob"), DirectRoom("bob", "alice"))
	assert.Equal(t, "direct:alice:bob", DirectRoom("bob", "alice"))
}

func TestRoomForChat(t *testing.T) {
	assert.Equal(t, "workspace:ws1", RoomForChat(models.ChatTypeWorkspace, "ws1", "", "u1", ""))
	assert.Equal(t, "project:p1", RoomForChat(models.ChatTypeProject, "ws1", "p1", "u1", ""))
	assert.Equal(t, "direct:u1:u2", RoomForChat(models.ChatTypeDirect, "", "", "u2", "u1"))
}

func TestRoomForChat_MissingScope(t *testing.T) {
	assert.Empty(t, RoomForChat(models.ChatTypeWorkspace, "", "", "u1", ""))
	assert.Empty(t, RoomForChat(models.ChatTypeProject, "ws1", "", "u1", ""))
	assert.Empty(t, RoomForChat(models.ChatTypeDirect, "", "", "u1", ""))
	assert.Empty(t, RoomForChat(models.ChatType("bogus"), "ws1", "p1", "u1", "u2"))
}
