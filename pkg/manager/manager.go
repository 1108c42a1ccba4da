package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/idpool"
	"github.com/lhmcgann/estim-go/pkg/log"
)

// Manager errors.
var (
	ErrNilModel       = errors.New("nil model")
	ErrDuplicateModel = errors.New("model key already registered")
	ErrModelNotFound  = errors.New("model not found")
)

// Manager is a registry of body models with registry-wide IDs for saved
// locations and areas.
type Manager struct {
	sessionID string
	models    map[string]*body.Model

	locations *bijection
	areas     *bijection

	events log.Logger
	logger *slog.Logger
}

// New creates an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		sessionID: uuid.NewString(),
		models:    make(map[string]*body.Model),
		locations: newBijection(),
		areas:     newBijection(),
		events:    log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SessionID returns the ID stamped on this manager's events.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// AddModel registers model under key and returns the key used. An empty key
// registers the model under its own name.
// Returns ErrDuplicateModel if the key is taken.
func (m *Manager) AddModel(model *body.Model, key string) (string, error) {
	if model == nil {
		m.fail("add_model", key, "", ErrNilModel)
		return "", ErrNilModel
	}
	if key == "" {
		key = model.Name()
	}
	if _, exists := m.models[key]; exists {
		err := fmt.Errorf("%w: %q", ErrDuplicateModel, key)
		m.fail("add_model", key, "", err)
		return "", err
	}

	m.models[key] = model

	regions := 0
	model.Root().Walk(func(*body.Region) bool {
		regions++
		return true
	})
	m.emit(log.Event{
		Category: log.CategoryModel,
		ModelKey: key,
		Model:    &log.ModelEvent{Name: model.Name(), Regions: regions},
	})
	m.debugLog("model added", "model", key, "name", model.Name(), "regions", regions)

	return key, nil
}

// Model returns the model registered under key.
func (m *Manager) Model(key string) (*body.Model, error) {
	model, ok := m.models[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, key)
	}
	return model, nil
}

// ModelKeys returns the registered keys in sorted order.
func (m *Manager) ModelKeys() []string {
	keys := make([]string, 0, len(m.models))
	for k := range m.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Manager) bijection(kind address.Kind) (*bijection, error) {
	switch kind {
	case address.KindLocation:
		return m.locations, nil
	case address.KindArea:
		return m.areas, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", body.ErrKindMismatch, kind)
	}
}

// Save saves spec in the model registered under key and returns its global
// ID. Saving an address the model already holds returns the existing global
// ID. On error nothing is reserved in either the model or the registry.
func (m *Manager) Save(key string, spec address.Spec, kind address.Kind) (int, error) {
	id, err := m.save(key, spec, kind)
	if err != nil {
		m.fail("save", key, spec.String(), err)
		return 0, err
	}
	return id, nil
}

func (m *Manager) save(key string, spec address.Spec, kind address.Kind) (int, error) {
	model, err := m.Model(key)
	if err != nil {
		return 0, err
	}
	b, err := m.bijection(kind)
	if err != nil {
		return 0, err
	}

	// Reserve the global ID first so a failing allocator leaves the model
	// untouched; it is released again if the model rejects the address or
	// already holds it.
	global, err := idpool.Next(b.ids)
	if err != nil {
		return 0, fmt.Errorf("allocate global %s id: %w", kind, err)
	}

	local, isNew, err := model.Save(spec, kind)
	if err != nil || !isNew {
		m.release(b, global)
	}
	if err != nil {
		return 0, fmt.Errorf("save %q in %s: %w", spec.String(), key, err)
	}

	if !isNew {
		existing, ok := b.global(key, local)
		if !ok {
			return 0, fmt.Errorf("%w: %s %d in %s has no global id", body.ErrNotFound, kind, local, key)
		}
		global = existing
	} else {
		b.bind(key, local, global)
	}

	m.emit(log.Event{
		Category: log.CategorySave,
		ModelKey: key,
		Save: &log.SaveEvent{
			Kind:     kind,
			Address:  spec.String(),
			LocalID:  local,
			GlobalID: global,
			IsNew:    isNew,
		},
	})
	m.debugLog("saved", "model", key, "kind", kind.String(), "address", spec.String(),
		"local_id", local, "global_id", global, "new", isNew)

	return global, nil
}

func (m *Manager) release(b *bijection, id int) {
	if err := b.ids.FreeID(id); err != nil {
		m.debugLog("release global id failed", "id", id, "error", err)
	}
}

// SaveText parses text as an address of kind and saves it.
func (m *Manager) SaveText(key string, kind address.Kind, text string) (int, error) {
	spec, err := address.Parse(kind, text)
	if err != nil {
		m.fail("save", key, text, err)
		return 0, err
	}
	return m.Save(key, spec, kind)
}

// Localize returns the global IDs of the saved areas in the model registered
// under key that fully or partially contain spec.
func (m *Manager) Localize(key string, spec address.Spec) (body.Localization, error) {
	start := time.Now()

	result, err := m.localize(key, spec)
	if err != nil {
		m.fail("localize", key, spec.String(), err)
		return body.NewLocalization(), err
	}

	elapsed := time.Since(start)
	m.emit(log.Event{
		Category: log.CategoryLocalize,
		ModelKey: key,
		Localize: &log.LocalizeEvent{
			Address:   spec.String(),
			Fully:     result.Fully.Sorted(),
			Partially: result.Partially.Sorted(),
			Duration:  elapsed,
		},
	})
	m.debugLog("localized", "model", key, "address", spec.String(),
		"fully", result.Fully.Len(), "partially", result.Partially.Len(), "duration", elapsed)

	return result, nil
}

func (m *Manager) localize(key string, spec address.Spec) (body.Localization, error) {
	model, err := m.Model(key)
	if err != nil {
		return body.NewLocalization(), err
	}
	local, err := model.FindContainingAreas(spec)
	if err != nil {
		return body.NewLocalization(), fmt.Errorf("localize %q in %s: %w", spec.String(), key, err)
	}

	translate := func(ids body.IDSet) (body.IDSet, error) {
		out := body.NewIDSet()
		for _, id := range ids.Sorted() {
			global, ok := m.areas.global(key, id)
			if !ok {
				return nil, fmt.Errorf("%w: area %d in %s has no global id", body.ErrNotFound, id, key)
			}
			out.Add(global)
		}
		return out, nil
	}

	fully, err := translate(local.Fully)
	if err != nil {
		return body.NewLocalization(), err
	}
	partially, err := translate(local.Partially)
	if err != nil {
		return body.NewLocalization(), err
	}
	return body.Localization{Fully: fully, Partially: partially}, nil
}

// LocalizeAll localizes every spec against the model registered under key and
// merges the results. It stops at the first failing query.
func (m *Manager) LocalizeAll(key string, specs ...address.Spec) (body.Localization, error) {
	result := body.NewLocalization()
	for _, spec := range specs {
		l, err := m.Localize(key, spec)
		if err != nil {
			return body.NewLocalization(), err
		}
		result = result.Merge(l)
	}
	return result, nil
}

// Retrieve returns the model key and address saved under a global ID.
func (m *Manager) Retrieve(globalID int, kind address.Kind) (string, address.Spec, error) {
	b, err := m.bijection(kind)
	if err != nil {
		return "", address.Spec{}, err
	}
	ref, ok := b.local(globalID)
	if !ok {
		return "", address.Spec{}, fmt.Errorf("%w: global %s %d", body.ErrNotFound, kind, globalID)
	}
	spec, err := m.models[ref.key].Retrieve(ref.id, kind)
	if err != nil {
		return "", address.Spec{}, err
	}
	return ref.key, spec, nil
}

// Locate returns the model key and model-local ID behind a global ID.
func (m *Manager) Locate(globalID int, kind address.Kind) (string, int, error) {
	b, err := m.bijection(kind)
	if err != nil {
		return "", 0, err
	}
	ref, ok := b.local(globalID)
	if !ok {
		return "", 0, fmt.Errorf("%w: global %s %d", body.ErrNotFound, kind, globalID)
	}
	return ref.key, ref.id, nil
}

// GlobalID returns the global ID of a model-local ID.
func (m *Manager) GlobalID(key string, localID int, kind address.Kind) (int, error) {
	if _, err := m.Model(key); err != nil {
		return 0, err
	}
	b, err := m.bijection(kind)
	if err != nil {
		return 0, err
	}
	id, ok := b.global(key, localID)
	if !ok {
		return 0, fmt.Errorf("%w: %s %d in %s", body.ErrNotFound, kind, localID, key)
	}
	return id, nil
}

// Len returns the number of saved addresses of kind across all models.
func (m *Manager) Len(kind address.Kind) int {
	b, err := m.bijection(kind)
	if err != nil {
		return 0
	}
	return b.len()
}

func (m *Manager) emit(event log.Event) {
	event.Timestamp = time.Now()
	event.SessionID = m.sessionID
	m.events.Log(event)
}

func (m *Manager) fail(op, key, addr string, err error) {
	m.emit(log.Event{
		Category: log.CategoryError,
		ModelKey: key,
		Error: &log.ErrorEventData{
			Operation: op,
			Message:   err.Error(),
			Address:   addr,
		},
	})
	m.debugLog(op+" failed", "model", key, "address", addr, "error", err)
}

// debugLog logs a debug message if logging is enabled.
func (m *Manager) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
