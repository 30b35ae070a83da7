package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ConversationNotFound creates an unknown conversation id error
func ConversationNotFound(id string) *Error {
	return New(ErrCodeConversationNotFound, fmt.Sprintf("conversation '%s' not found", id)).
		WithDetail("id", id)
}

// PromptNotFound creates an unknown prompt template id error
func PromptNotFound(id string) *Error {
	return New(ErrCodePromptNotFound, fmt.Sprintf("prompt template '%s' not found", id)).
		WithDetail("id", id)
}

// StorageWrite creates a storage persistence failure error
func StorageWrite(path string, err error) *Error {
	return Wrap(err, ErrCodeStorageWrite, fmt.Sprintf("failed to persist storage document: %s", path)).
		WithDetail("path", path)
}

// StorageRead creates a storage load failure error
func StorageRead(path string, err error) *Error {
	return Wrap(err, ErrCodeStorageRead, fmt.Sprintf("failed to load storage document: %s", path)).
		WithDetail("path", path)
}

// DaemonNotRunning creates a daemon unavailable error
func DaemonNotRunning(socket string) *Error {
	return New(ErrCodeDaemonNotRunning, "replywatchd is not running").
		WithDetail("socket", socket)
}

// DaemonResponse creates an unexpected daemon response error
func DaemonResponse(status int) *Error {
	return New(ErrCodeDaemonResponse, fmt.Sprintf("daemon returned status %d", status)).
		WithDetail("status", status)
}
