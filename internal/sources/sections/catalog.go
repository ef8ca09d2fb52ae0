package sections

import (
	"sync"
	"time"
)

// Catalog holds the current sections. It is swapped wholesale on reload.
type Catalog struct {
	mu         sync.RWMutex
	sections   []Section
	lastReload time.Time
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace swaps in a new set of sections
func (c *Catalog) Replace(sections []Section) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sections = append([]Section(nil), sections...)
	c.lastReload = time.Now()
}

// All returns a copy of the current sections
func (c *Catalog) All() []Section {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Section(nil), c.sections...)
}

// Get returns the section with the given ID
func (c *Catalog) Get(id string) (Section, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// GetLastReload returns when sections were last replaced
func (c *Catalog) GetLastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}
