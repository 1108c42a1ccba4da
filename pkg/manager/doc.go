// Package manager aggregates several body models behind one registry and
// virtualizes their IDs.
//
// Each model issues its own dense local IDs for saved locations and areas.
// The manager maps every (model key, local ID) pair to a global ID that is
// unique across all models of the same kind, so callers can refer to any
// saved address by a single integer:
//
//	m := manager.New()
//	key, _ := m.AddModel(model, "left")
//	id, _ := m.SaveText(key, address.KindArea, "hand, finger | palmar")
//	loc, _ := m.Localize(key, address.MustParse(address.KindLocation, "hand, finger, phalanx | palmar"))
//	loc.Fully.Has(id) // true
//
// Every operation is reported to the configured log.Logger and, at debug
// level, to the configured slog.Logger.
//
// A Manager is not safe for concurrent use.
package manager
