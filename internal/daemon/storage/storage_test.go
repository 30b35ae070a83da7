package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replywatch/replywatch/pkg/models"
)

func TestLoadMissingFileReturnsEmptyDocument(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "conversations.yml"))

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.Empty(t, doc.Conversations)
	assert.Empty(t, doc.Prompts)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "conversations.yml"))

	edited := "edited text"
	conversations := []*models.Conversation{
		{
			ID:            "conv_1",
			HostContextID: "tab-1",
			Status:        models.StatusCompleted,
			Prompt:        "a prompt",
			Content:       "a reply",
			EditedContent: &edited,
			Timestamp:     time.Now().Truncate(time.Second),
		},
		{
			ID:            "conv_2",
			HostContextID: "tab-2",
			Status:        models.StatusInProgress,
			Prompt:        "another",
		},
	}
	require.NoError(t, st.SaveConversations(conversations))

	doc, err := st.Load()
	require.NoError(t, err)
	require.Len(t, doc.Conversations, 2)
	assert.Equal(t, "conv_1", doc.Conversations[0].ID)
	require.NotNil(t, doc.Conversations[0].EditedContent)
	assert.Equal(t, "edited text", *doc.Conversations[0].EditedContent)
	assert.Nil(t, doc.Conversations[1].EditedContent)
}

func TestCollectionsSaveIndependently(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "conversations.yml"))

	require.NoError(t, st.SaveConversations([]*models.Conversation{{ID: "conv_1"}}))
	require.NoError(t, st.SavePrompts([]*models.PromptTemplate{{ID: "prompt_1", Title: "T", Pinned: true}}))
	require.NoError(t, st.SaveCustomSound("c291bmQ="))

	// Each save must preserve the other collections.
	require.NoError(t, st.SaveConversations([]*models.Conversation{{ID: "conv_1"}, {ID: "conv_2"}}))

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Conversations, 2)
	require.Len(t, doc.Prompts, 1)
	assert.True(t, doc.Prompts[0].Pinned)
	assert.Equal(t, "c291bmQ=", doc.CustomSound)
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.yml")
	st := New(path)

	require.NoError(t, st.SaveConversations([]*models.Conversation{{ID: "conv_1"}}))

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}
