package db

// Schema defines the SQLite schema for the flash history: one row per
// device per flashing run, recording the final outcome only (in-flight
// progress is never persisted).
const Schema = `
CREATE TABLE IF NOT EXISTS flashes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    device_path TEXT NOT NULL,
    image_path TEXT NOT NULL,
    image_sha256 TEXT NOT NULL,
    image_size INTEGER NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('running', 'succeeded', 'failed')),
    error_message TEXT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_flashes_device_path ON flashes(device_path);
CREATE INDEX IF NOT EXISTS idx_flashes_status ON flashes(status);
CREATE INDEX IF NOT EXISTS idx_flashes_started_at ON flashes(started_at);
`

// Status constants
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Flash represents one recorded device write.
type Flash struct {
	ID           int64
	DevicePath   string
	ImagePath    string
	ImageSHA256  string
	ImageSize    int64
	Status       string
	ErrorMessage string
	StartedAt    string
	FinishedAt   string
}
