// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/database"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateProject(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(project).Error)
	return project
}

func Assign(t *testing.T, db *gorm.DB, user *models.User, project *models.Project) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserProject{UserID: user.ID, ProjectID: project.ID}).Error)
}

func CreateService(t *testing.T, db *gorm.DB, project *models.Project, svc models.Service) *models.Service {
	t.Helper()
	svc.ProjectID = project.ID
	if svc.Name == "" {
		svc.Name = "api"
	}
	require.NoError(t, db.Create(&svc).Error)
	return &svc
}
