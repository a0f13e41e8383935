package config

import (
	"os"
	"strconv"
)

// Defaults for the admin progress fallback heuristic. The bounds carry no
// documented rationale, so they stay tunable via environment.
const (
	DefaultProgressUpdateScanLimit  = 50
	DefaultProgressRecentIssueLimit = 5
)

// ProgressUpdateScanLimit is how many of an admin's most recent updates the
// progress fallback scans when no issues are formally assigned.
func ProgressUpdateScanLimit() int {
	return envInt("PROGRESS_UPDATE_SCAN_LIMIT", DefaultProgressUpdateScanLimit)
}

// ProgressRecentIssueLimit caps the "recent issues" list in the progress view.
func ProgressRecentIssueLimit() int {
	return envInt("PROGRESS_RECENT_ISSUE_LIMIT", DefaultProgressRecentIssueLimit)
}

// UploadDir is where issue photos are written; served under /uploads.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
