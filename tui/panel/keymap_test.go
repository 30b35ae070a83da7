package panel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesAppliesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.toml")
	content := `
delete = ["x"]
yank = ["c", "yy"]
new_prompt = ["ctrl+n"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	km := DefaultKeyMap()
	require.NoError(t, LoadOverrides(&km, path))

	assert.Equal(t, []string{"x"}, km.Delete.Keys())
	assert.Equal(t, []string{"c", "yy"}, km.Yank.Keys())
	assert.Equal(t, []string{"ctrl+n"}, km.NewPrompt.Keys())

	// Untouched bindings keep their defaults.
	assert.Equal(t, []string{"k", "up"}, km.Up.Keys())
}

func TestLoadOverridesPreservesHelpDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.toml")
	require.NoError(t, os.WriteFile(path, []byte(`yank = ["c"]`), 0644))

	km := DefaultKeyMap()
	require.NoError(t, LoadOverrides(&km, path))

	help := km.Yank.Help()
	assert.Equal(t, "c", help.Key)
	assert.Equal(t, "copy reply", help.Desc)
}

func TestLoadOverridesMissingFileKeepsDefaults(t *testing.T) {
	km := DefaultKeyMap()
	require.NoError(t, LoadOverrides(&km, filepath.Join(t.TempDir(), "nope.toml")))
	assert.Equal(t, []string{"dd"}, km.Delete.Keys())
}

func TestLoadOverridesEmptyPathIsNoop(t *testing.T) {
	km := DefaultKeyMap()
	require.NoError(t, LoadOverrides(&km, ""))
	assert.Equal(t, []string{"yy"}, km.Yank.Keys())
}

func TestLoadOverridesRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.toml")
	require.NoError(t, os.WriteFile(path, []byte(`delete = [unclosed`), 0644))

	km := DefaultKeyMap()
	assert.Error(t, LoadOverrides(&km, path))
}

func TestApplyOverridesIgnoresUnknownActions(t *testing.T) {
	km := DefaultKeyMap()
	applyOverrides(&km, map[string][]string{
		"teleport": {"t"},
		"refresh":  {"F5"},
	})
	assert.Equal(t, []string{"F5"}, km.Refresh.Keys())
	assert.Equal(t, []string{"q", "ctrl+c"}, km.Quit.Keys())
}

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Delete", "delete"},
		{"NewPrompt", "new_prompt"},
		{"TogglePin", "toggle_pin"},
		{"ClearEdit", "clear_edit"},
		{"PrevTab", "prev_tab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, camelToSnake(tt.in))
	}
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSequenceStateBuildsBuffer(t *testing.T) {
	seq := NewSequenceState()

	assert.Equal(t, "d", seq.Update(keyMsg('d')))
	assert.True(t, seq.IsPending())
	assert.Equal(t, "dd", seq.Update(keyMsg('d')))

	seq.Clear()
	assert.False(t, seq.IsPending())
}

func TestMatchesSequence(t *testing.T) {
	del := key.NewBinding(key.WithKeys("dd"))
	assert.True(t, matchesSequence("dd", del))
	assert.False(t, matchesSequence("d", del))
	assert.False(t, matchesSequence("ddd", del))
}

func TestPrefixOfSequence(t *testing.T) {
	del := key.NewBinding(key.WithKeys("dd"))
	top := key.NewBinding(key.WithKeys("gg"))

	assert.True(t, prefixOfSequence("d", del, top))
	assert.True(t, prefixOfSequence("g", del, top))
	assert.False(t, prefixOfSequence("x", del, top))
	assert.False(t, prefixOfSequence("dd", del, top))
}
