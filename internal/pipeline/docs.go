package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DocMeta describes one uploaded source document.
type DocMeta struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Duplicate   bool      `json:"duplicate,omitempty"`
}

// StoredDoc pairs upload metadata with the raw file bytes.
type StoredDoc struct {
	Meta DocMeta
	Data []byte
}

// DocStore is a thread-safe in-memory registry of uploaded documents.
// Re-uploading identical bytes returns the existing entry flagged as a
// duplicate instead of storing a second copy. Listings and whole-corpus
// selections come back in upload order, so the same uploads always
// produce the same corpus.
type DocStore struct {
	mu     sync.Mutex
	docs   map[string]*StoredDoc
	byHash map[string]string
	order  []string
}

func NewDocStore() *DocStore {
	return &DocStore{
		docs:   make(map[string]*StoredDoc),
		byHash: make(map[string]string),
	}
}

// Add registers a document and returns its metadata.
func (s *DocStore) Add(filename string, data []byte) DocMeta {
	hash := ContentHashHex(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[hash]; ok {
		meta := s.docs[id].Meta
		meta.Duplicate = true
		return meta
	}

	doc := &StoredDoc{
		Meta: DocMeta{
			ID:          uuid.NewString(),
			Filename:    filename,
			Size:        int64(len(data)),
			ContentHash: hash,
			UploadedAt:  time.Now().UTC(),
		},
		Data: data,
	}
	s.docs[doc.Meta.ID] = doc
	s.byHash[hash] = doc.Meta.ID
	s.order = append(s.order, doc.Meta.ID)
	return doc.Meta
}

// Get returns one document, or nil when absent.
func (s *DocStore) Get(id string) *StoredDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

// Select returns the documents for the given ids, or every stored
// document when ids is empty. Unknown ids produce an error.
func (s *DocStore) Select(ids []string) ([]*StoredDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		docs := make([]*StoredDoc, 0, len(s.order))
		for _, id := range s.order {
			docs = append(docs, s.docs[id])
		}
		return docs, nil
	}

	docs := make([]*StoredDoc, 0, len(ids))
	for _, id := range ids {
		d, ok := s.docs[id]
		if !ok {
			return nil, fmt.Errorf("unknown document id: %s", id)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// List returns metadata for all stored documents in upload order.
func (s *DocStore) List() []DocMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	metas := make([]DocMeta, 0, len(s.order))
	for _, id := range s.order {
		metas = append(metas, s.docs[id].Meta)
	}
	return metas
}

// Len returns the number of stored documents.
func (s *DocStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ContentHashHex computes SHA-256 of content and returns the hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
