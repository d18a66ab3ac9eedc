package bridge

import "github.com/rbxbridge/rbxbridge/internal/logger"

// Notifier receives state changes for editor UIs. Calls arrive one at a time
// on a delivery goroutine, in the order the changes happened. A slow
// Notifier delays later notifications but never a Bridge operation.
type Notifier interface {
	// PlaceChanged fires when the target place changes or is renamed.
	PlaceChanged(s Snapshot)
	// ContextChanged fires after the target's context or active set changed.
	ContextChanged(s Snapshot)
	// QueueCleared fires when pending jobs of a context were discarded.
	QueueCleared(ctx ExecutionContext)
	// Connected fires on a liveness probe while no context is active.
	Connected()
}

// Notifiers fans every notification out to each member in order.
type Notifiers []Notifier

func (ns Notifiers) PlaceChanged(s Snapshot) {
	for _, n := range ns {
		n.PlaceChanged(s)
	}
}

func (ns Notifiers) ContextChanged(s Snapshot) {
	for _, n := range ns {
		n.ContextChanged(s)
	}
}

func (ns Notifiers) QueueCleared(ctx ExecutionContext) {
	for _, n := range ns {
		n.QueueCleared(ctx)
	}
}

func (ns Notifiers) Connected() {
	for _, n := range ns {
		n.Connected()
	}
}

// LogNotifier writes every notification to the process log.
type LogNotifier struct{}

func (LogNotifier) PlaceChanged(s Snapshot) {
	if s.TargetPlaceID == nil {
		logger.Infof("[bridge] no target place")
		return
	}
	logger.Infof("[bridge] target place: %s (%d)", s.TargetPlaceName, *s.TargetPlaceID)
}

func (LogNotifier) ContextChanged(s Snapshot) {
	logger.Infof("[bridge] target context: %s (active %v, switch %t)", s.TargetContext, s.ActiveContexts, s.ShowContextSwitch)
}

func (LogNotifier) QueueCleared(ctx ExecutionContext) {
	logger.Infof("[bridge] %s queue cleared", ctx)
}

func (LogNotifier) Connected() {
	logger.Infof("[bridge] runtime connected")
}

type nopNotifier struct{}

func (nopNotifier) PlaceChanged(Snapshot)         {}
func (nopNotifier) ContextChanged(Snapshot)       {}
func (nopNotifier) QueueCleared(ExecutionContext) {}
func (nopNotifier) Connected()                    {}
