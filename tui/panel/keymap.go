package panel

import (
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	toml "github.com/pelletier/go-toml/v2"
)

// KeyMap contains the panel keybindings. Vim-style navigation takes
// precedence; multi-key sequences (dd, yy, gg) are resolved through
// SequenceState.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding // gg sequence
	Bottom key.Binding // G

	// Core actions
	Quit    key.Binding
	Help    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Refresh key.Binding

	// Conversation actions
	Delete     key.Binding // dd sequence
	Yank       key.Binding // yy sequence
	Edit       key.Binding
	ClearEdit  key.Binding
	ShowDetail key.Binding

	// Prompt actions
	NewPrompt key.Binding
	TogglePin key.Binding

	// View management
	NextTab key.Binding
	PrevTab key.Binding
}

// DefaultKeyMap returns the default vim-style panel keymap.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("gg"),
			key.WithHelp("gg", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Delete: key.NewBinding(
			key.WithKeys("dd"),
			key.WithHelp("dd", "delete"),
		),
		Yank: key.NewBinding(
			key.WithKeys("yy"),
			key.WithHelp("yy", "copy reply"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit reply"),
		),
		ClearEdit: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore original"),
		),
		ShowDetail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		NewPrompt: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new prompt"),
		),
		TogglePin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin/unpin"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev tab"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ShowDetail, k.Delete, k.Yank, k.NextTab, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.ShowDetail, k.Edit, k.ClearEdit, k.Yank, k.Delete},
		{k.NewPrompt, k.TogglePin, k.Refresh},
		{k.NextTab, k.PrevTab, k.Help, k.Quit},
	}
}

// LoadOverrides reads a TOML keybinding file mapping snake_case action
// names to key lists:
//
//	delete = ["x"]
//	yank = ["c", "yy"]
//
// A missing file is not an error; the defaults stay in effect.
func LoadOverrides(km *KeyMap, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	overrides := make(map[string][]string)
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return err
	}
	applyOverrides(km, overrides)
	return nil
}

// applyOverrides maps snake_case config keys onto CamelCase key.Binding
// fields via reflection, preserving each binding's help description.
func applyOverrides(km *KeyMap, overrides map[string][]string) {
	if len(overrides) == 0 {
		return
	}

	v := reflect.ValueOf(km).Elem()
	t := v.Type()
	bindingType := reflect.TypeOf(key.Binding{})

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || t.Field(i).Type != bindingType {
			continue
		}

		keys, ok := overrides[camelToSnake(t.Field(i).Name)]
		if !ok || len(keys) == 0 {
			continue
		}

		current := field.Interface().(key.Binding)
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], current.Help().Desc),
		)))
	}
}

// camelToSnake converts a CamelCase string to snake_case.
// Examples: NewPrompt -> new_prompt, TogglePin -> toggle_pin
func camelToSnake(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
