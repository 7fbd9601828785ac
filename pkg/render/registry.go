package render

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry stores renderers by name. The first renderer registered is the
// default returned by Negotiate when nothing else matches.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// Negotiate picks a renderer for an Accept header. Media ranges are tried
// by descending q (ties keep header order) and q=0 ranges are never chosen.
// "*/*" selects the default, "type/*" the first renderer of that type by
// name. With no match the default is returned.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.fallback == "" {
		return nil, fmt.Errorf("render: no renderers registered")
	}

	for _, mediaRange := range parseAccept(accept) {
		if renderer, ok := r.match(mediaRange); ok {
			return renderer, nil
		}
	}
	return r.renderers[r.fallback], nil
}

func (r *Registry) match(mediaRange string) (Renderer, bool) {
	if mediaRange == "*/*" {
		return r.renderers[r.fallback], true
	}
	prefix, wildcard := strings.CutSuffix(mediaRange, "/*")
	for _, name := range r.sortedNames() {
		renderer := r.renderers[name]
		served, _, err := mime.ParseMediaType(renderer.ContentType())
		if err != nil {
			continue
		}
		if served == mediaRange || (wildcard && strings.HasPrefix(served, prefix+"/")) {
			return renderer, true
		}
	}
	return nil, false
}

type weightedRange struct {
	mediaType string
	q         float64
}

// parseAccept returns the acceptable media ranges ordered by preference.
func parseAccept(accept string) []string {
	var ranges []weightedRange
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 || parsed > 1 {
				continue
			}
			q = parsed
		}
		if q == 0 {
			continue
		}
		ranges = append(ranges, weightedRange{mediaType: mediaType, q: q})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].q > ranges[j].q
	})

	out := make([]string, len(ranges))
	for i, wr := range ranges {
		out[i] = wr.mediaType
	}
	return out
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
