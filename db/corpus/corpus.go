package corpus

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Corpus is an insertion-ordered set of documents keyed by ID. It is not
// safe for concurrent use; the owning session serializes access.
type Corpus struct {
	order []string
	docs  map[string]*Document
}

func New() *Corpus {
	return &Corpus{docs: make(map[string]*Document)}
}

// Put stores doc, replacing any document with the same ID. A replaced
// document keeps its original position.
func (c *Corpus) Put(doc *Document) {
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = doc
}

func (c *Corpus) Get(id string) (*Document, error) {
	doc, ok := c.docs[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return doc, nil
}

func (c *Corpus) Remove(id string) error {
	if _, ok := c.docs[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Corpus) Clear() {
	c.order = nil
	c.docs = make(map[string]*Document)
}

func (c *Corpus) Len() int {
	return len(c.order)
}

func (c *Corpus) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Documents returns the documents in display order.
func (c *Corpus) Documents() []*Document {
	docs := make([]*Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id])
	}
	return docs
}

// Snapshot returns a copy that shares the immutable documents but not the
// ordering or index, so later mutations of c are not visible through it.
func (c *Corpus) Snapshot() *Corpus {
	snapshot := &Corpus{
		order: c.IDs(),
		docs:  make(map[string]*Document, len(c.docs)),
	}
	for id, doc := range c.docs {
		snapshot.docs[id] = doc
	}
	return snapshot
}
