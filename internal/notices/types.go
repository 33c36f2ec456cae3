package notices

import "time"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const DefaultTimeout = 10 * time.Second

// Notice is a user-visible message. ID is the message text unless the notice was forced.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
	Forced  bool      `json:"forced,omitempty"`
}
