package wire

import "github.com/rbxbridge/rbxbridge/internal/bridge"

func contextNames(cs []bridge.ExecutionContext) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// FromPlace converts a registry entry.
func FromPlace(p bridge.Place) Place {
	return Place{
		PlaceID:        p.ID,
		Name:           p.Name,
		TargetContext:  string(p.TargetContext),
		ActiveContexts: contextNames(p.ActiveContexts.Slice()),
	}
}

// FromPlaces converts a registry listing; the result is never nil.
func FromPlaces(ps []bridge.Place) []Place {
	out := make([]Place, len(ps))
	for i, p := range ps {
		out[i] = FromPlace(p)
	}
	return out
}

// FromJobs converts a drained batch.
func FromJobs(jobs []bridge.Job) []Job {
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		out[i] = Job{File: j.File, Code: j.Code}
	}
	return out
}

// FromQueuedJob describes a job accepted for execution.
func FromQueuedJob(j bridge.Job) QueuedJob {
	return QueuedJob{
		ID:            j.ID,
		File:          j.File,
		Context:       string(j.Context),
		TargetPlaceID: j.TargetPlaceID,
		Bytes:         len(j.Code),
		QueuedAt:      j.QueuedAt,
	}
}

// FromSnapshot converts a bridge snapshot.
func FromSnapshot(s bridge.Snapshot) State {
	queued := make(map[string]int, len(s.Queued))
	for c, n := range s.Queued {
		queued[string(c)] = n
	}
	return State{
		TargetPlaceID:     s.TargetPlaceID,
		TargetPlaceName:   s.TargetPlaceName,
		TargetContext:     string(s.TargetContext),
		ActiveContexts:    contextNames(s.ActiveContexts),
		ShowContextSwitch: s.ShowContextSwitch,
		Places:            FromPlaces(s.Places),
		Queued:            queued,
	}
}

// FromStatusReport normalizes a status report. Missing fields take permissive
// defaults so a flaky agent cannot wedge the bridge; ok is false only when the
// report carries no place id and cannot be attributed.
func FromStatusReport(r StatusReport) (report bridge.StatusReport, ok bool) {
	if r.PlaceID == nil {
		return bridge.StatusReport{}, false
	}
	ctx, _ := bridge.ParseContext(r.Context)
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return bridge.StatusReport{
		PlaceID:   *r.PlaceID,
		PlaceName: r.PlaceName,
		Context:   ctx,
		Active:    active,
	}, true
}
