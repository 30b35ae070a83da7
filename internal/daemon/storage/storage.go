// Package storage persists the daemon's conversation and prompt-template
// collections as a single YAML document.
//
// Writes are whole-document overwrites: every mutation re-snapshots the
// full set. A write mutex serializes the read-modify-write sequence so
// interleaved handlers cannot clobber each other's changes.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	rwerrors "github.com/replywatch/replywatch/errors"
	"github.com/replywatch/replywatch/pkg/models"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current layout version of the persisted document.
const SchemaVersion = 1

// Document is the full persisted state.
type Document struct {
	SchemaVersion int                      `yaml:"schema_version"`
	Conversations []*models.Conversation   `yaml:"conversations"`
	Prompts       []*models.PromptTemplate `yaml:"prompts"`
	// CustomSound is an optional notification sound payload, base64-encoded.
	CustomSound string `yaml:"custom_sound,omitempty"`
}

// Store reads and writes the document at a fixed path.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a Store for the given document path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document from disk.
// Returns an empty document if the file doesn't exist.
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{SchemaVersion: SchemaVersion}, nil
		}
		return nil, rwerrors.StorageRead(s.path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, rwerrors.StorageRead(s.path, err)
	}

	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = SchemaVersion
	}

	return &doc, nil
}

// Save writes the document to disk atomically (temp file + rename).
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *Store) save(doc *Document) error {
	doc.SchemaVersion = SchemaVersion

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return rwerrors.StorageWrite(s.path, fmt.Errorf("create storage directory: %w", err))
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return rwerrors.StorageWrite(s.path, fmt.Errorf("marshal document: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".conversations-*.yml")
	if err != nil {
		return rwerrors.StorageWrite(s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return rwerrors.StorageWrite(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return rwerrors.StorageWrite(s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return rwerrors.StorageWrite(s.path, err)
	}

	return nil
}

// SaveConversations replaces the conversations collection, preserving the
// prompts and custom-sound entries. The read-modify-write runs under the
// write mutex.
func (s *Store) SaveConversations(conversations []*models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Conversations = conversations
	return s.save(doc)
}

// SavePrompts replaces the prompt-template collection, preserving the
// other entries. A prompt write failure never touches conversations.
func (s *Store) SavePrompts(prompts []*models.PromptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Prompts = prompts
	return s.save(doc)
}

// SaveCustomSound replaces the stored notification sound payload.
// An empty string clears it.
func (s *Store) SaveCustomSound(encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.CustomSound = encoded
	return s.save(doc)
}
