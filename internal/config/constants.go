package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./userbase.db"

	// DefaultUploadDir is the default directory for uploaded profile images
	DefaultUploadDir = "./uploads"
)
