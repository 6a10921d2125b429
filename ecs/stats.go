package ecs

// WorldStats is a point-in-time summary of a World.
type WorldStats struct {
	LiveEntities   int
	MaxEntities    int
	ComponentTypes int
	Stores         []StoreStats
	Systems        []SystemStatus
}

// StoreStats describes one component store.
type StoreStats struct {
	ID    ComponentID
	Type  string
	Count int
}

// SystemStatus describes one registered system.
type SystemStatus struct {
	Name        string
	Requirement Signature
	Components  []string
	Bound       bool
	EntityCount int
}

// CollectStats gathers entity, store and system counts.
func (w *World) CollectStats() *WorldStats {
	stats := &WorldStats{
		LiveEntities:   w.EntityCount(),
		MaxEntities:    w.MaxEntities(),
		ComponentTypes: w.components.Len(),
		Stores:         make([]StoreStats, 0, w.components.Len()),
		Systems:        make([]SystemStatus, 0, w.systems.Len()),
	}

	for id, s := range w.components.stores {
		stats.Stores = append(stats.Stores, StoreStats{
			ID:    ComponentID(id),
			Type:  s.Type().String(),
			Count: s.Len(),
		})
	}

	for _, info := range w.systems.Systems() {
		names := make([]string, 0, info.Requirement.Count())
		for _, id := range info.Requirement.IDs() {
			names = append(names, w.components.Name(id))
		}
		stats.Systems = append(stats.Systems, SystemStatus{
			Name:        info.Name,
			Requirement: info.Requirement,
			Components:  names,
			Bound:       info.Bound,
			EntityCount: info.System.Entities().Len(),
		})
	}

	return stats
}
