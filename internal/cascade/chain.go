// Package cascade keeps a chain of dependent selections consistent under
// rapid edits and out-of-order option loading. Each link carries a
// generation counter; a load result is applied only when its generation is
// still the link's latest, so a slow response for a superseded upstream
// value can never overwrite newer options.
package cascade

import (
	"context"
	"fmt"
	"sync"

	"qc-console/internal/model"
	"qc-console/pkg/apierror"
)

type State int

const (
	// Empty: no options, nothing selected, no load pending.
	Empty State = iota
	// Loading: a load keyed by the current upstream value is in flight.
	Loading
	// Ready: options are loaded and selectable.
	Ready
	// Failed: the last load failed; options are empty until the upstream
	// value is reselected. No automatic retry.
	Failed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Loader fetches the option set for a link keyed by its upstream selection.
type Loader func(ctx context.Context, parentID int) ([]model.NamedItem, error)

// LinkSpec describes one position of a chain. The first link has no Loader:
// its options are installed with SetOptions once their independent fetch
// completes.
type LinkSpec struct {
	Name     string
	Required bool
	Load     Loader
}

// Link is a read-only snapshot of one chain position.
type Link struct {
	Name     string            `json:"name"`
	Selected int               `json:"selected"`
	State    string            `json:"state"`
	Options  []model.NamedItem `json:"options"`
	Error    string            `json:"error,omitempty"`
}

type link struct {
	spec     LinkSpec
	selected int
	state    State
	options  []model.NamedItem
	err      error
	gen      uint64
}

type Chain struct {
	mu    sync.Mutex
	links []*link
}

func NewChain(specs ...LinkSpec) (*Chain, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("a chain needs at least one link")
	}

	links := make([]*link, len(specs))
	for i, spec := range specs {
		if i > 0 && spec.Load == nil {
			return nil, fmt.Errorf("link %q: every dependent link needs a loader", spec.Name)
		}
		links[i] = &link{spec: spec}
	}

	return &Chain{links: links}, nil
}

// SetOptions installs externally loaded options for a link, typically the
// root. The link becomes Ready and keeps its current selection only when it
// is still present in the new set.
func (c *Chain) SetOptions(pos int, options []model.NamedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.links) {
		return fmt.Errorf("link position %d out of range", pos)
	}

	l := c.links[pos]
	l.gen++
	l.state = Ready
	l.options = options
	l.err = nil
	if l.selected != 0 && !contains(options, l.selected) {
		l.selected = 0
	}

	return nil
}

// SetFailed records a failed external load for a link.
func (c *Chain) SetFailed(pos int, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.links) {
		return fmt.Errorf("link position %d out of range", pos)
	}

	l := c.links[pos]
	l.gen++
	l.state = Failed
	l.options = nil
	l.err = cause

	return nil
}

// Select records a selection at pos. Every downstream link is reset to
// Empty synchronously; when id is non-zero the immediate downstream link
// starts Loading and its load runs asynchronously. The returned channel is
// closed once the triggered load has settled (applied, failed or
// discarded); when no load is triggered it is already closed.
func (c *Chain) Select(ctx context.Context, pos int, id int) (<-chan struct{}, error) {
	done := make(chan struct{})

	c.mu.Lock()

	if pos < 0 || pos >= len(c.links) {
		c.mu.Unlock()
		return nil, fmt.Errorf("link position %d out of range", pos)
	}

	l := c.links[pos]
	if id != 0 {
		if l.state != Ready {
			c.mu.Unlock()
			return nil, apierror.Validation("OPTIONS_NOT_READY", fmt.Sprintf("%s options are not loaded", l.spec.Name), l.state.String())
		}
		if !contains(l.options, id) {
			c.mu.Unlock()
			return nil, apierror.Validation("UNKNOWN_OPTION", fmt.Sprintf("%d is not a valid %s", id, l.spec.Name), "")
		}
	}

	l.selected = id

	// Downstream invalidation is synchronous: bump generations so any
	// in-flight load for the old upstream value is discarded on arrival.
	for _, down := range c.links[pos+1:] {
		down.gen++
		down.selected = 0
		down.state = Empty
		down.options = nil
		down.err = nil
	}

	if pos == len(c.links)-1 || id == 0 {
		c.mu.Unlock()
		close(done)
		return done, nil
	}

	next := c.links[pos+1]
	next.state = Loading
	gen := next.gen
	load := next.spec.Load
	c.mu.Unlock()

	go func() {
		defer close(done)
		options, err := load(ctx, id)
		c.apply(pos+1, gen, options, err)
	}()

	return done, nil
}

// apply installs a load result unless the link has moved on to a newer
// generation, in which case the result is dropped on the floor.
func (c *Chain) apply(pos int, gen uint64, options []model.NamedItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.links[pos]
	if l.gen != gen {
		return
	}

	if err != nil {
		l.state = Failed
		l.options = nil
		l.err = err
		return
	}

	l.state = Ready
	l.options = options
	l.err = nil
}

// Selected returns the current selection at pos, 0 when unselected.
func (c *Chain) Selected(pos int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.links) {
		return 0
	}

	return c.links[pos].selected
}

// Snapshot returns a copy of every link for rendering.
func (c *Chain) Snapshot() []Link {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Link, len(c.links))
	for i, l := range c.links {
		errText := ""
		if l.err != nil {
			errText = l.err.Error()
		}

		options := make([]model.NamedItem, len(l.options))
		copy(options, l.options)

		out[i] = Link{
			Name:     l.spec.Name,
			Selected: l.selected,
			State:    l.state.String(),
			Options:  options,
			Error:    errText,
		}
	}

	return out
}

// Validate returns field-level messages for every required link that would
// block submission: unselected, still loading, or failed.
func (c *Chain) Validate() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	problems := map[string]string{}
	for _, l := range c.links {
		if !l.spec.Required {
			continue
		}

		switch {
		case l.state == Loading:
			problems[l.spec.Name] = "las opciones siguen cargando"
		case l.state == Failed:
			problems[l.spec.Name] = "las opciones no se pudieron cargar"
		case l.selected == 0:
			problems[l.spec.Name] = "este campo es obligatorio"
		}
	}

	return problems
}

// Complete reports whether every required link has a selection and none is
// loading or failed. This is the submission gate input.
func (c *Chain) Complete() bool {
	return len(c.Validate()) == 0
}

func contains(options []model.NamedItem, id int) bool {
	for _, option := range options {
		if option.ID == id {
			return true
		}
	}

	return false
}
