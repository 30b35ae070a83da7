package theme

import (
	"os"

	"github.com/replywatch/replywatch/config"
)

// Nerd Font Icons (Private Constants)
const (
	nerdIconChat              = "󰭹" // md-chat (U+F0B79)
	nerdIconPrompt            = "󰎚" // md-note (U+F039A)
	nerdIconPinned            = "󰐃" // md-pin (U+F0403)
	nerdIconSuccess           = "󰄬" // md-check (U+F012C)
	nerdIconError             = "" // cod-error (U+EA87)
	nerdIconWarning           = "" // fa-warning (U+F071)
	nerdIconInfo              = "󰋼" // md-information (U+F02FC)
	nerdIconBell              = "󰂚" // md-bell (U+F009A)
	nerdIconArrow             = "󰁔" // md-arrow_right (U+F0054)
	nerdIconBullet            = "" // oct-dot_fill (U+F444)
	nerdIconEdited            = "󰏫" // md-pencil (U+F03EB)
	nerdIconStatusInProgress  = "󰔟" // md-timer_sand (U+F051F)
	nerdIconStatusCompleted   = "󰄳" // md-checkbox_marked_circle (U+F0133)
	nerdIconStatusInterrupted = "" // pom-external_interruption (U+E00A)
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconChat              = "★"
	asciiIconPrompt            = "▢"
	asciiIconPinned            = "*"
	asciiIconSuccess           = "✓"
	asciiIconError             = "✗"
	asciiIconWarning           = "⚠"
	asciiIconInfo              = "ℹ"
	asciiIconBell              = "♪"
	asciiIconArrow             = "→"
	asciiIconBullet            = "•"
	asciiIconEdited            = "~"
	asciiIconStatusInProgress  = "◐"
	asciiIconStatusCompleted   = "●"
	asciiIconStatusInterrupted = "⊗"
)

// Public Icon Variables
var (
	IconChat              string
	IconPrompt            string
	IconPinned            string
	IconSuccess           string
	IconError             string
	IconWarning           string
	IconInfo              string
	IconBell              string
	IconArrow             string
	IconBullet            string
	IconEdited            string
	IconStatusInProgress  string
	IconStatusCompleted   string
	IconStatusInterrupted string
)

// init function determines which icon set to use
func init() {
	useASCII := false

	// 1. Check environment variable first
	if os.Getenv("REPLYWATCH_ICONS") == "ascii" {
		useASCII = true
	} else {
		// 2. Check config file
		cfg, err := config.LoadDefault()
		if err == nil && cfg != nil && cfg.Panel.Icons == "ascii" {
			useASCII = true
		}
	}

	if useASCII {
		IconChat = asciiIconChat
		IconPrompt = asciiIconPrompt
		IconPinned = asciiIconPinned
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconInfo = asciiIconInfo
		IconBell = asciiIconBell
		IconArrow = asciiIconArrow
		IconBullet = asciiIconBullet
		IconEdited = asciiIconEdited
		IconStatusInProgress = asciiIconStatusInProgress
		IconStatusCompleted = asciiIconStatusCompleted
		IconStatusInterrupted = asciiIconStatusInterrupted
	} else {
		IconChat = nerdIconChat
		IconPrompt = nerdIconPrompt
		IconPinned = nerdIconPinned
		IconSuccess = nerdIconSuccess
		IconError = nerdIconError
		IconWarning = nerdIconWarning
		IconInfo = nerdIconInfo
		IconBell = nerdIconBell
		IconArrow = nerdIconArrow
		IconBullet = nerdIconBullet
		IconEdited = nerdIconEdited
		IconStatusInProgress = nerdIconStatusInProgress
		IconStatusCompleted = nerdIconStatusCompleted
		IconStatusInterrupted = nerdIconStatusInterrupted
	}
}

// StatusIcon returns the icon for a conversation status string.
func StatusIcon(status string) string {
	switch status {
	case "in_progress":
		return IconStatusInProgress
	case "completed":
		return IconStatusCompleted
	case "interrupted":
		return IconStatusInterrupted
	default:
		return IconBullet
	}
}
