package service

import (
	"database/sql"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/database"
)

// AppVersion is stamped at build time via -ldflags.
var AppVersion = "dev"

// SystemService handles health and version queries.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// CheckHealth verifies database connectivity.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// VersionInfo describes the running application and schema versions.
type VersionInfo struct {
	AppVersion    string `json:"appVersion"`
	SchemaVersion int64  `json:"schemaVersion"`
}

// Version returns application and schema version information.
func (s *SystemService) Version() (VersionInfo, error) {
	schemaVersion, err := database.Version(s.db)
	if err != nil {
		return VersionInfo{}, err
	}

	return VersionInfo{
		AppVersion:    AppVersion,
		SchemaVersion: schemaVersion,
	}, nil
}
