package alias

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Resolver resolves aliases against a lazily loaded registry.
type Resolver struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	loaded   bool
	registry Registry
}

// NewResolver creates a resolver that loads source on first use.
func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// NewStaticResolver creates a resolver over an already built registry.
func NewStaticResolver(registry Registry) *Resolver {
	return &Resolver{logger: zap.NewNop(), loaded: true, registry: registry}
}

func (r *Resolver) current(ctx context.Context) Registry {
	r.mu.RLock()
	if r.loaded {
		reg := r.registry
		r.mu.RUnlock()
		return reg
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		r.registry = r.load(ctx)
		r.loaded = true
	}
	return r.registry
}

func (r *Resolver) load(ctx context.Context) Registry {
	if r.source == nil {
		return NewRegistry(nil)
	}

	data, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Warn("Alias registry unavailable, no aliases defined",
			zap.String("source", r.source.String()), zap.Error(err))
		return NewRegistry(nil)
	}

	reg := Parse(data)
	if reg.Len() == 0 {
		r.logger.Warn("Alias registry is empty or malformed", zap.String("source", r.source.String()))
	} else {
		r.logger.Debug("Alias registry loaded",
			zap.String("source", r.source.String()), zap.Int("aliases", reg.Len()))
	}
	return reg
}

// Resolve returns the alias for name after trimming and lower-casing it.
func (r *Resolver) Resolve(ctx context.Context, name string) (CollectAlias, bool) {
	return r.current(ctx).Lookup(name)
}

// List returns the known alias keys in lexicographic order.
func (r *Resolver) List(ctx context.Context) []string {
	return r.current(ctx).Keys()
}

// All returns every alias in key order.
func (r *Resolver) All(ctx context.Context) []CollectAlias {
	reg := r.current(ctx)
	keys := reg.Keys()
	out := make([]CollectAlias, 0, len(keys))
	for _, k := range keys {
		entry, _ := reg.Lookup(k)
		out = append(out, entry)
	}
	return out
}

// Reload discards the loaded registry and reads the source again.
func (r *Resolver) Reload(ctx context.Context) {
	if r.source == nil {
		return
	}
	reg := r.load(ctx)

	r.mu.Lock()
	r.registry = reg
	r.loaded = true
	r.mu.Unlock()
}
