package generator

import "sync"

// Collection is the read side of the last successful request: its drafts, the
// descriptor they were generated from and the selected document.
type Collection struct {
	mu         sync.RWMutex
	requestID  uint64
	drafts     DraftSet
	descriptor JobDescriptor
	selected   DocumentType
	onSelect   func(DocumentType)
}

func NewCollection() *Collection {
	return &Collection{selected: LinkedInMessage}
}

// OnSelect registers fn to run whenever the selection actually changes.
func (c *Collection) OnSelect(fn func(DocumentType)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSelect = fn
}

// Observe is a Manager observer. A new request moves the cursor to its
// content type; a Succeeded state replaces the whole collection. The previous
// drafts stay readable while a request is pending or after it failed.
func (c *Collection) Observe(s State) {
	if s.Descriptor == nil {
		return
	}
	switch s.Phase {
	case PhasePending:
		c.Select(s.Descriptor.ContentType)
	case PhaseSucceeded:
		c.Replace(s.RequestID, s.Drafts, *s.Descriptor)
	}
}

// Replace swaps in a new draft set atomically.
func (c *Collection) Replace(requestID uint64, drafts DraftSet, d JobDescriptor) {
	c.mu.Lock()
	c.requestID = requestID
	c.drafts = drafts.clone()
	c.descriptor = d
	changed := c.selected != d.ContentType
	c.selected = d.ContentType
	fn := c.onSelect
	c.mu.Unlock()

	if changed && fn != nil {
		fn(d.ContentType)
	}
}

// Select moves the cursor. It reports whether the selection changed;
// re-selecting the current type is a no-op.
func (c *Collection) Select(t DocumentType) bool {
	c.mu.Lock()
	if c.selected == t {
		c.mu.Unlock()
		return false
	}
	c.selected = t
	fn := c.onSelect
	c.mu.Unlock()

	if fn != nil {
		fn(t)
	}
	return true
}

// Selected returns the current cursor.
func (c *Collection) Selected() DocumentType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Get returns the draft text for t, if any drafts exist.
func (c *Collection) Get(t DocumentType) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.drafts[t]
	return text, ok
}

// Drafts returns a copy of the drafts, their descriptor and the id of the
// request that produced them. ok is false before the first success.
func (c *Collection) Drafts() (drafts DraftSet, d JobDescriptor, requestID uint64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.drafts == nil {
		return nil, JobDescriptor{}, 0, false
	}
	return c.drafts.clone(), c.descriptor, c.requestID, true
}
