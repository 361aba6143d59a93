package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/clipdeck/clipdeck/internal/models"
)

// Descriptor is the static, class-level metadata for one engine type.
// Instance-level state lives on the StorageBackend row.
type Descriptor struct {
	// Type is the unique engine-type discriminator stored on backend rows.
	Type string

	// DisplayName is the default human-readable name for new backends.
	DisplayName string

	// Singleton restricts the type to at most one enabled backend row.
	Singleton bool

	// DefaultConfig seeds the config of newly created backend rows.
	DefaultConfig models.ConfigMap

	// TryBefore and TryAfter constrain where instances of this type sit
	// in the parse/transcode attempt order, by engine type. Constraints
	// naming types with no enabled instances are ignored at sort time.
	TryBefore []string
	TryAfter  []string

	// New hydrates an engine instance from a backend row.
	New func(backend *models.StorageBackend) (Engine, error)
}

// Registry holds the engine Descriptors known to this process. Types are
// registered once at startup; hydration turns enabled StorageBackend rows
// into live engine instances.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	logger      *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		descriptors: make(map[string]Descriptor),
		logger:      logger.With("component", "engine-registry"),
	}
}

// Register adds a Descriptor. Registering an empty or duplicate type is an
// error; startup should fail loudly rather than shadow an engine.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("register engine: type is required")
	}
	if d.New == nil {
		return fmt.Errorf("register engine %q: factory is required", d.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.Type]; exists {
		return fmt.Errorf("register engine %q: %w", d.Type, ErrDuplicateType)
	}
	r.descriptors[d.Type] = d
	r.logger.Debug("registered engine type", "type", d.Type, "singleton", d.Singleton)
	return nil
}

// Descriptor returns the descriptor for an engine type.
func (r *Registry) Descriptor(engineType string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[engineType]
	return d, ok
}

// Types returns all registered engine types in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.descriptors))
	for t := range r.descriptors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Hydrate turns backend rows into live engine instances. It fails on rows
// naming unknown engine types and enforces singleton constraints across the
// whole set.
func (r *Registry) Hydrate(backends []*models.StorageBackend) ([]Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]int)
	engines := make([]Engine, 0, len(backends))
	for _, b := range backends {
		d, ok := r.descriptors[b.EngineType]
		if !ok {
			return nil, fmt.Errorf("backend %s: %w: %q", b.ID, ErrUnknownType, b.EngineType)
		}
		seen[b.EngineType]++
		if d.Singleton && seen[b.EngineType] > 1 {
			return nil, fmt.Errorf("%w: %q", ErrSingleton, b.EngineType)
		}
		eng, err := d.New(b)
		if err != nil {
			return nil, fmt.Errorf("hydrate engine %q for backend %s: %w", b.EngineType, b.ID, err)
		}
		engines = append(engines, eng)
	}
	return engines, nil
}

// HydrateOne turns a single backend row into an engine instance.
func (r *Registry) HydrateOne(backend *models.StorageBackend) (Engine, error) {
	r.mu.RLock()
	d, ok := r.descriptors[backend.EngineType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend %s: %w: %q", backend.ID, ErrUnknownType, backend.EngineType)
	}
	eng, err := d.New(backend)
	if err != nil {
		return nil, fmt.Errorf("hydrate engine %q for backend %s: %w", backend.EngineType, backend.ID, err)
	}
	return eng, nil
}

// DefaultBackend builds a new, unsaved StorageBackend row seeded from the
// descriptor's defaults.
func (r *Registry) DefaultBackend(engineType string) (*models.StorageBackend, error) {
	d, ok := r.Descriptor(engineType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, engineType)
	}
	cfg := make(models.ConfigMap, len(d.DefaultConfig))
	for k, v := range d.DefaultConfig {
		cfg[k] = v
	}
	return &models.StorageBackend{
		EngineType:  d.Type,
		DisplayName: d.DisplayName,
		Enabled:     models.BoolPtr(true),
		Config:      cfg,
	}, nil
}
