package credential

import (
	"context"
	"sync"
)

type memProvider struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemProvider keeps secrets for the lifetime of the process only.
func NewMemProvider() IProvider {
	return &memProvider{m: make(map[string]string)}
}

func (p *memProvider) Get(ctx context.Context, id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.m[id]
	if !ok {
		return "", errNotFound(id)
	}
	return v, nil
}

func (p *memProvider) Put(ctx context.Context, id string, secret string) error {
	if err := validatePut(id, secret); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[id] = secret
	return nil
}

func (p *memProvider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.m[id]; !ok {
		return errNotFound(id)
	}
	delete(p.m, id)
	return nil
}
