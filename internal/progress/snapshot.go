package progress

// SnapshotData is the persisted form of the store.
type SnapshotData struct {
	Modules map[string]ModuleProgress `json:"modules"`
	Paths   map[string]PathProgress   `json:"paths"`
}

// Snapshot exports a deep copy of every record for persistence.
func (s *Store) Snapshot() *SnapshotData {
	data := &SnapshotData{
		Modules: make(map[string]ModuleProgress, len(s.modules)),
		Paths:   make(map[string]PathProgress, len(s.paths)),
	}
	for id, rec := range s.modules {
		data.Modules[id] = rec.clone()
	}
	for id, rec := range s.paths {
		data.Paths[id] = rec.clone()
	}
	return data
}

// Restore replaces every record with the snapshot contents. Path rollups are
// recomputed from the restored module records so an imported snapshot can
// never carry a drifted path record. Path entries the index does not know
// and no module record points at are dropped.
func (s *Store) Restore(data *SnapshotData) {
	s.Reset()
	if data == nil {
		return
	}
	for id, rec := range data.Modules {
		rec = rec.clone()
		if rec.ModuleID == "" {
			rec.ModuleID = id
		}
		if rec.Status == "" {
			rec.Status = StatusNotStarted
		}
		rec.Status = statusFor(rec.CompletionPercentage, rec.Status)
		if rec.Status != StatusCompleted {
			rec.CompletedAt = nil
		}
		s.modules[id] = rec
	}

	pathIDs := make(map[string]bool)
	for id := range data.Paths {
		if _, known := s.moduleCount(id); known {
			pathIDs[id] = true
		}
	}
	for _, rec := range s.modules {
		pathIDs[rec.PathID] = true
	}
	for id := range pathIDs {
		s.RecomputePathProgress(id)
	}
}
