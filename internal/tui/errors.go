package tui

import "github.com/pders01/tankobon/internal/failure"

// describeFailure turns a classified error into a short user-facing line.
func describeFailure(what string, err *failure.Error) string {
	if err == nil {
		return ""
	}
	return what + ": " + err.Reason.String()
}
