package engine

import (
	"context"
	"fmt"

	"github.com/lhmcgann/estim-go/internal/testharness/loader"
	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// Action names.
const (
	ActionAddModel = "add_model"
	ActionSave     = "save"
	ActionLocalize = "localize"
	ActionRetrieve = "retrieve"
	ActionGlobalID = "global_id"
	ActionCount    = "count"
	ActionRestore  = "snapshot_restore"
)

// Parameter and output keys.
const (
	ParamModel     = "model"
	ParamKey       = "key"
	ParamKind      = "kind"
	ParamAddress   = "address"
	ParamAddresses = "addresses"
	ParamID        = "id"
	ParamLocalID   = "local_id"

	KeyError     = "error"
	KeyID        = "id"
	KeyLocalID   = "local_id"
	KeyNew       = "new"
	KeyAddress   = "address"
	KeyModel     = "model"
	KeyFully     = "fully"
	KeyPartially = "partially"
	KeyLocations = "locations"
	KeyAreas     = "areas"
)

// handleAddModel registers another model mid-scenario.
// Params: model (ref), key (optional). Outputs: model.
func (e *Engine) handleAddModel(_ context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error) {
	ref, err := stringParam(step, ParamModel)
	if err != nil {
		return nil, err
	}
	key, _ := optionalString(step, ParamKey)
	ref = loader.ResolveModel(ref, state.BaseDir)

	key, err = addModel(state.Registry, loader.ModelRef{Key: key, Model: ref})
	if err != nil {
		return nil, err
	}
	state.Models = append(state.Models, loader.ModelRef{Key: key, Model: ref})
	return map[string]any{KeyModel: key}, nil
}

// handleSave saves an address.
// Params: model, kind (default area), address. Outputs: id, local_id, new,
// address.
func handleSave(_ context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error) {
	key := modelParam(step, state)
	kind, err := kindParam(step)
	if err != nil {
		return nil, err
	}
	text, err := stringParam(step, ParamAddress)
	if err != nil {
		return nil, err
	}
	spec, err := address.Parse(kind, text)
	if err != nil {
		return nil, err
	}

	before := state.Registry.Len(kind)
	id, err := state.Registry.Save(key, spec, kind)
	if err != nil {
		return nil, err
	}
	_, local, err := state.Registry.Locate(id, kind)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		KeyID:      id,
		KeyLocalID: local,
		KeyNew:     state.Registry.Len(kind) > before,
		KeyAddress: spec.String(),
	}, nil
}

// handleLocalize runs a localization query.
// Params: model, address or addresses. Outputs: fully, partially.
func handleLocalize(_ context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error) {
	key := modelParam(step, state)
	texts, err := stringListParam(step, ParamAddresses)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		text, err := stringParam(step, ParamAddress)
		if err != nil {
			return nil, err
		}
		texts = []string{text}
	}

	specs := make([]address.Spec, 0, len(texts))
	for _, text := range texts {
		spec, err := address.ParseLocation(text)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	res, err := state.Registry.LocalizeAll(key, specs...)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		KeyFully:     res.Fully.Sorted(),
		KeyPartially: res.Partially.Sorted(),
	}, nil
}

// handleRetrieve looks up a global ID.
// Params: kind, id. Outputs: model, address.
func handleRetrieve(_ context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error) {
	kind, err := kindParam(step)
	if err != nil {
		return nil, err
	}
	id, err := intParam(step, ParamID)
	if err != nil {
		return nil, err
	}
	key, spec, err := state.Registry.Retrieve(id, kind)
	if err != nil {
		return nil, err
	}
	return map[string]any{KeyModel: key, KeyAddress: spec.String()}, nil
}

// handleGlobalID translates a model-local ID.
// Params: model, kind, local_id. Outputs: id.
func handleGlobalID(_ context.Context, step *loader.Step, state *ExecutionState) (map[string]any, error) {
	kind, err := kindParam(step)
	if err != nil {
		return nil, err
	}
	local, err := intParam(step, ParamLocalID)
	if err != nil {
		return nil, err
	}
	id, err := state.Registry.GlobalID(modelParam(step, state), local, kind)
	if err != nil {
		return nil, err
	}
	return map[string]any{KeyID: id}, nil
}

// handleCount reports how many addresses the registry holds.
// Outputs: locations, areas.
func handleCount(_ context.Context, _ *loader.Step, state *ExecutionState) (map[string]any, error) {
	return counts(state.Registry), nil
}

// handleRestore snapshots the registry, rebuilds it from the scenario's
// models and restores the snapshot into the new registry.
// Outputs: locations, areas.
func (e *Engine) handleRestore(ctx context.Context, _ *loader.Step, state *ExecutionState) (map[string]any, error) {
	snapshot := state.Registry.Snapshot()

	fresh, err := e.newState(ctx, state.Models)
	if err != nil {
		return nil, err
	}
	if err := fresh.Registry.Restore(snapshot); err != nil {
		return nil, err
	}
	state.Registry = fresh.Registry
	return counts(state.Registry), nil
}

func counts(m *manager.Manager) map[string]any {
	return map[string]any{
		KeyLocations: m.Len(address.KindLocation),
		KeyAreas:     m.Len(address.KindArea),
	}
}

func modelParam(step *loader.Step, state *ExecutionState) string {
	if key, ok := optionalString(step, ParamModel); ok {
		return key
	}
	return state.DefaultModel()
}

func kindParam(step *loader.Step) (address.Kind, error) {
	text, ok := optionalString(step, ParamKind)
	if !ok {
		return address.KindArea, nil
	}
	return address.ParseKind(text)
}

func optionalString(step *loader.Step, key string) (string, bool) {
	v, ok := step.Params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func stringParam(step *loader.Step, key string) (string, error) {
	s, ok := optionalString(step, key)
	if !ok {
		return "", fmt.Errorf("%s: missing string parameter %q", step.Action, key)
	}
	return s, nil
}

func intParam(step *loader.Step, key string) (int, error) {
	v, ok := step.Params[key]
	if !ok {
		return 0, fmt.Errorf("%s: missing parameter %q", step.Action, key)
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%s: parameter %q is not an integer: %v", step.Action, key, v)
	}
	return n, nil
}

// stringListParam accepts a list of strings or a single string.
func stringListParam(step *loader.Step, key string) ([]string, error) {
	v, ok := step.Params[key]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: parameter %q holds a non-string: %v", step.Action, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: parameter %q is not a list", step.Action, key)
	}
}
