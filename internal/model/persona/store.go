package persona

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
)

// ErrNoPersonas means the registry holds nothing to fall back to.
var ErrNoPersonas = errors.New("no personas configured")

// Store exposes persona retrieval for services and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	Resolve(id string) (Resolution, error)
}

// Resolution is the outcome of looking up a requested persona.
type Resolution struct {
	Persona   Persona
	Requested string
	// Fallback is set when a non-empty requested id was unknown and the
	// default persona was substituted.
	Fallback bool
}

// Registry implements Store over an immutable map built once at startup.
type Registry struct {
	items     map[string]Persona
	ordered   []Persona
	defaultID string
}

// NewRegistry returns a Registry preloaded with the supplied personas. When
// defaultID is not among them, the first persona by id becomes the default.
func NewRegistry(items []Persona, defaultID string) *Registry {
	r := &Registry{items: make(map[string]Persona, len(items))}
	for _, item := range items {
		if _, dup := r.items[item.ID]; dup {
			continue
		}
		r.items[item.ID] = item
		r.ordered = append(r.ordered, item)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })

	r.defaultID = defaultID
	if _, ok := r.items[defaultID]; !ok && len(r.ordered) > 0 {
		r.defaultID = r.ordered[0].ID
		log.Warn().Str("component", "persona").Str("configured", defaultID).
			Str("default", r.defaultID).Msg("default persona not found, using first persona")
	}
	return r
}

// List returns the personas sorted by id.
func (r *Registry) List() []Persona {
	return append([]Persona(nil), r.ordered...)
}

// FindByID looks up a persona by identifier.
func (r *Registry) FindByID(id string) (Persona, bool) {
	p, ok := r.items[id]
	return p, ok
}

// DefaultID returns the id used for absent or unknown personas.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Resolve returns the requested persona, or the default one when id is empty
// or unknown. It only fails when the registry is empty.
func (r *Registry) Resolve(id string) (Resolution, error) {
	if len(r.items) == 0 {
		return Resolution{}, ErrNoPersonas
	}

	if p, ok := r.items[id]; ok {
		return Resolution{Persona: p, Requested: id}, nil
	}

	res := Resolution{Persona: r.items[r.defaultID], Requested: id, Fallback: id != ""}
	if res.Fallback {
		log.Warn().Str("component", "persona").Str("requested", id).
			Str("default", r.defaultID).Msg("unknown persona, falling back to default")
	}
	return res, nil
}
