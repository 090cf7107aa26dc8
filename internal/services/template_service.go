package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/persistence"
)

// templateServiceImpl implements the TemplateService interface.
// Templates are kept locally only.
type templateServiceImpl struct {
	statusTracker
	mu        sync.RWMutex
	templates map[string]*domain.Template
	store     persistence.Persistence
}

// NewTemplateService creates a new TemplateService instance
func NewTemplateService(store persistence.Persistence) TemplateService {
	return &templateServiceImpl{
		templates: map[string]*domain.Template{},
		store:     store,
	}
}

func (t *templateServiceImpl) Fetch(ctx context.Context) error {
	return withStatus(&t.statusTracker, "fetch templates", func() error {
		loaded, err := t.store.LoadTemplates(ctx)
		if err != nil {
			return err
		}
		templates := make(map[string]*domain.Template, len(loaded))
		for _, tpl := range loaded {
			templates[tpl.Name] = tpl
		}

		t.mu.Lock()
		t.templates = templates
		t.mu.Unlock()
		return nil
	})
}

// Templates returns copies sorted by name.
func (t *templateServiceImpl) Templates() []*domain.Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedTemplates(t.templates)
}

func (t *templateServiceImpl) Get(name string) (*domain.Template, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tpl, ok := t.templates[strings.TrimSpace(name)]
	if !ok {
		return nil, errors.NewNotFoundError("template", name)
	}
	return copyTemplate(tpl), nil
}

func (t *templateServiceImpl) Add(ctx context.Context, name string, shift *domain.Shift) (*domain.Template, error) {
	tpl, err := domain.NewTemplate(name, shift)
	if err != nil {
		return nil, err
	}

	err = withStatus(&t.statusTracker, "add template", func() error {
		t.mu.Lock()
		defer t.mu.Unlock()

		next := make(map[string]*domain.Template, len(t.templates)+1)
		for k, v := range t.templates {
			next[k] = v
		}
		next[tpl.Name] = tpl
		return t.save(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return copyTemplate(tpl), nil
}

func (t *templateServiceImpl) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return withStatus(&t.statusTracker, "delete template", func() error {
		t.mu.Lock()
		defer t.mu.Unlock()

		if _, ok := t.templates[name]; !ok {
			return errors.NewNotFoundError("template", name)
		}
		next := make(map[string]*domain.Template, len(t.templates))
		for k, v := range t.templates {
			if k != name {
				next[k] = v
			}
		}
		return t.save(ctx, next)
	})
}

// save persists templates and, once stored, makes them current.
func (t *templateServiceImpl) save(ctx context.Context, templates map[string]*domain.Template) error {
	if err := t.store.SaveTemplates(ctx, sortedTemplates(templates)); err != nil {
		return err
	}
	t.templates = templates
	return nil
}

func sortedTemplates(templates map[string]*domain.Template) []*domain.Template {
	out := make([]*domain.Template, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, copyTemplate(tpl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func copyTemplate(tpl *domain.Template) *domain.Template {
	return &domain.Template{Name: tpl.Name, Shift: tpl.Shift.Clone()}
}
