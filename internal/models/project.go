package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ProjectType categorizes what kind of artifact a project builds.
type ProjectType string

// ProjectType values.
const (
	// ProjectTypeWeb is a web application project.
	ProjectTypeWeb ProjectType = "web"
	// ProjectTypeMobile is a mobile application project.
	ProjectTypeMobile ProjectType = "mobile"
	// ProjectTypeAgent is an autonomous agent project.
	ProjectTypeAgent ProjectType = "agent"
	// ProjectTypeIntegration is a third-party integration project.
	ProjectTypeIntegration ProjectType = "integration"
)

// ParseProjectType validates a project type string from the request boundary.
func ParseProjectType(s string) (ProjectType, error) {
	switch ProjectType(s) {
	case ProjectTypeWeb, ProjectTypeMobile, ProjectTypeAgent, ProjectTypeIntegration:
		return ProjectType(s), nil
	}
	return "", fmt.Errorf("unknown project type: %q", s)
}

// ProjectStatus is the lifecycle state of a project.
//
// draft -> building -> deployed, with failed reachable from draft or
// building. Nothing transitions out of deployed or failed.
type ProjectStatus string

// ProjectStatus values.
const (
	// ProjectStatusDraft is the initial state.
	ProjectStatusDraft ProjectStatus = "draft"
	// ProjectStatusBuilding marks a build in progress.
	ProjectStatusBuilding ProjectStatus = "building"
	// ProjectStatusDeployed is the terminal success state.
	ProjectStatusDeployed ProjectStatus = "deployed"
	// ProjectStatusFailed is the terminal failure state.
	ProjectStatusFailed ProjectStatus = "failed"
)

// ParseProjectStatus validates a status string from the request boundary.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectStatusDraft, ProjectStatusBuilding, ProjectStatusDeployed, ProjectStatusFailed:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("unknown project status: %q", s)
}

// Project represents a user-owned project. Ownership is permanent.
type Project struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	Name        string `gorm:"type:text;not null"` // Project name.
	Description string `gorm:"type:text"`          // Optional description.

	Type   ProjectType   `gorm:"type:varchar(16);not null;default:'web'"`   // Project category.
	Status ProjectStatus `gorm:"type:varchar(16);not null;default:'draft'"` // Lifecycle state.

	URL      string         `gorm:"type:text"`                        // Deployment URL, set on deploy.
	Settings datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form settings map.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
