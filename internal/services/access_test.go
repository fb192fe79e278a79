package services

import (
	"testing"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVerifyWorkspaceAccess(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	role := models.Role{Name: models.RoleMember}
	database.DB.Create(&role)
	database.DB.Create(&models.Member{UserID: "u1", WorkspaceID: "ws1", RoleID: role.ID})

	assert.True(t, VerifyWorkspaceAccess("u1", "ws1"))

	// Non-member, wrong workspace, empty ids: all plain denials
	assert.False(t, VerifyWorkspaceAccess("u2", "ws1"))
	assert.False(t, VerifyWorkspaceAccess("u1", "ws2"))
	assert.False(t, VerifyWorkspaceAccess("", "ws1"))
	assert.False(t, VerifyWorkspaceAccess("u1", ""))
}

func TestVerifyProjectAccess(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")
	seedUser("u2", "Bob")

	role := models.Role{Name: models.RoleMember}
	database.DB.Create(&role)
	database.DB.Create(&models.Member{UserID: "u1", WorkspaceID: "ws1", RoleID: role.ID})

	project := models.Project{Name: "api", WorkspaceID: "ws1", CreatedByID: "u1"}
	database.DB.Create(&project)

	assert.True(t, VerifyProjectAccess("u1", project.ID))
	assert.False(t, VerifyProjectAccess("u2", project.ID))

	// Missing project is a denial, not an error
	assert.False(t, VerifyProjectAccess("u1", "no-such-project"))
}

func TestProjectWorkspaceID(t *testing.T) {
	SetupTestDB()
	seedUser("u1", "Alice")

	project := models.Project{Name: "api", WorkspaceID: "ws1", CreatedByID: "u1"}
	database.DB.Create(&project)

	assert.Equal(t, "ws1", ProjectWorkspaceID(project.ID))
	assert.Equal(t, "", ProjectWorkspaceID("missing"))
}
