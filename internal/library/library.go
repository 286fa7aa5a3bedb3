// Package library keeps the set of reference templates in memory and
// persists them to SQLite.
package library

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
)

// ErrNotFound is returned when a template id is not in the library.
var ErrNotFound = errors.New("library: template not found")

// ErrDuplicateID is returned when a template with the same id is added twice.
var ErrDuplicateID = errors.New("library: duplicate template id")

// Library provides thread-safe storage of templates in insertion order.
//
// Insertion order matters: it is the order in which templates are handed
// to the matcher and the cluster tree, and both break ties by position.
//
// Library is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	lib := library.New()
//	if err := lib.Add(tmpl); err != nil {
//	    log.Fatal(err)
//	}
//	gates := lib.Filter("Gate", "")
type Library struct {
	mu        sync.RWMutex
	templates []*symbol.Template
	byID      map[uuid.UUID]int
}

// New creates an empty library.
func New() *Library {
	return &Library{
		byID: make(map[uuid.UUID]int),
	}
}

// Add appends templates to the library. Either every template is added or,
// when an id is already present, none is.
func (l *Library) Add(templates ...*symbol.Template) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := make(map[uuid.UUID]bool, len(templates))
	for _, t := range templates {
		if _, ok := l.byID[t.ID]; ok || batch[t.ID] {
			return ErrDuplicateID
		}
		batch[t.ID] = true
	}

	for _, t := range templates {
		l.byID[t.ID] = len(l.templates)
		l.templates = append(l.templates, t)
	}
	return nil
}

// Get returns the template with the given id.
func (l *Library) Get(id uuid.UUID) (*symbol.Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.templates[i], nil
}

// Remove deletes the template with the given id, keeping the order of the
// rest.
func (l *Library) Remove(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.byID[id]
	if !ok {
		return ErrNotFound
	}
	l.templates = slices.Delete(l.templates, i, i+1)
	delete(l.byID, id)
	for j := i; j < len(l.templates); j++ {
		l.byID[l.templates[j].ID] = j
	}
	return nil
}

// All returns a snapshot of every template in insertion order.
func (l *Library) All() []*symbol.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.templates)
}

// Filter returns the templates whose class and platform match. An empty
// argument matches anything.
func (l *Library) Filter(class, platform string) []*symbol.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*symbol.Template
	for _, t := range l.templates {
		if class != "" && t.Class != class {
			continue
		}
		if platform != "" && t.Platform != platform {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Classes returns the distinct non-empty template classes in sorted order.
func (l *Library) Classes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var classes []string
	for _, t := range l.templates {
		if t.Class != "" && !slices.Contains(classes, t.Class) {
			classes = append(classes, t.Class)
		}
	}
	slices.Sort(classes)
	return classes
}

// Len returns the number of templates.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.templates)
}

// Clear removes every template.
func (l *Library) Clear() {
	l.mu.Lock()
	l.templates = nil
	l.byID = make(map[uuid.UUID]int)
	l.mu.Unlock()
}
