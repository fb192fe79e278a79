package realtime

import (
	"fmt"

	"github.com/Ernie1234/team-task-backend/internal/models"
)

// Room name derivation. These are pure functions: the same scope always
// yields the same room string, and direct rooms are independent of which
// participant computes them.

func WorkspaceRoom(workspaceID string) string {
	return fmt.Sprintf("workspace:%s", workspaceID)
}

func ProjectRoom(projectID string) string {
	return fmt.Sprintf("project:%s", projectID)
}

// DirectRoom sorts the participant ids so both sides of a conversation
// agree on the room name.
func DirectRoom(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("direct:%s:%s", userA, userB)
}

// RoomForChat resolves the room for a chat scope. Returns "" when the
// scope id required by chatType is missing.
func RoomForChat(chatType models.ChatType, workspaceID, projectID, selfID, otherUserID string) string {
	switch chatType {
	case models.ChatTypeWorkspace:
		if workspaceID == "" {
			return ""
		}
		return WorkspaceRoom(workspaceID)
	case models.ChatTypeProject:
		if projectID == "" {
			return ""
		}
		return ProjectRoom(projectID)
	case models.ChatTypeDirect:
		if selfID == "" || otherUserID == "" {
			return ""
		}
		return DirectRoom(selfID, otherUserID)
	}
	return ""
}
