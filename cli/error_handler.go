package cli

import (
	"fmt"
	"os"

	"github.com/replywatch/replywatch/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "Configuration not found. Create %s or pass --config.\n", "replywatch.yml")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(os.Stderr, "Configuration is invalid: %v\n", err)

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintf(os.Stderr, "The replywatch daemon is not running. Start it with 'replywatch daemon start'.\n")

	case errors.ErrCodeConversationNotFound:
		fmt.Fprintf(os.Stderr, "No such conversation: %v\n", err)

	case errors.ErrCodePromptNotFound:
		fmt.Fprintf(os.Stderr, "No such prompt: %v\n", err)

	default:
		if h.Verbose {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}
