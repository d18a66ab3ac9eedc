package bridge

import "time"

// DefaultBatchBudget bounds the summed code length of one drained batch.
const DefaultBatchBudget = 5 * 1024

// Job is one unit of source queued for execution.
type Job struct {
	ID   string
	Code string
	File string
	// TargetPlaceID is the place that was targeted when the job was queued.
	// Nil means no place was targeted.
	TargetPlaceID *int64
	Context       ExecutionContext
	QueuedAt      time.Time
}

// jobStore holds one FIFO queue per execution context. Its key set is fixed
// at construction. It is not safe for concurrent use.
type jobStore struct {
	queues map[ExecutionContext][]Job
}

func newJobStore() *jobStore {
	s := &jobStore{queues: make(map[ExecutionContext][]Job, len(Contexts))}
	for _, c := range Contexts {
		s.queues[c] = nil
	}
	return s
}

func (s *jobStore) push(job Job) {
	s.queues[job.Context] = append(s.queues[job.Context], job)
}

// take removes and returns the oldest jobs of ctx whose summed code length
// stays within budget. The first job is always taken, however large.
func (s *jobStore) take(ctx ExecutionContext, budget int) []Job {
	q := s.queues[ctx]
	if len(q) == 0 {
		return nil
	}
	n, size := 1, len(q[0].Code)
	for n < len(q) && size+len(q[n].Code) <= budget {
		size += len(q[n].Code)
		n++
	}
	batch := make([]Job, n)
	copy(batch, q[:n])
	if n == len(q) {
		s.queues[ctx] = nil
	} else {
		s.queues[ctx] = append([]Job(nil), q[n:]...)
	}
	return batch
}

// clear drops every pending job of ctx and returns how many were dropped.
func (s *jobStore) clear(ctx ExecutionContext) int {
	n := len(s.queues[ctx])
	s.queues[ctx] = nil
	return n
}

func (s *jobStore) counts() map[ExecutionContext]int {
	out := make(map[ExecutionContext]int, len(Contexts))
	for _, c := range Contexts {
		out[c] = len(s.queues[c])
	}
	return out
}
