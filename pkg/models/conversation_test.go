package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayContentPrefersEdit(t *testing.T) {
	conv := &Conversation{Content: "observed reply"}
	assert.Equal(t, "observed reply", conv.DisplayContent())

	edited := "fixed up reply"
	conv.EditedContent = &edited
	assert.Equal(t, "fixed up reply", conv.DisplayContent())
}

func TestCloneIsIndependent(t *testing.T) {
	edited := "original edit"
	conv := &Conversation{
		ID:            "conv-1",
		HostContextID: "tab-1",
		Status:        StatusCompleted,
		Prompt:        "a question",
		Content:       "an answer",
		EditedContent: &edited,
		Timestamp:     time.Now(),
	}

	cp := conv.Clone()
	assert.Equal(t, conv, cp)

	// Mutating the copy must not leak back through the shared pointer.
	*cp.EditedContent = "mutated"
	cp.Content = "changed"
	assert.Equal(t, "original edit", *conv.EditedContent)
	assert.Equal(t, "an answer", conv.Content)
}

func TestCloneWithoutEdit(t *testing.T) {
	conv := &Conversation{ID: "conv-1", Status: StatusInProgress}
	cp := conv.Clone()
	assert.Nil(t, cp.EditedContent)
	assert.Equal(t, conv, cp)
}
