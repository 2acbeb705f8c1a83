// Package domain holds the overlay state machine, geometry and view model.
package domain

// Phase is the overlay lifecycle state.
type Phase int

const (
	Closed Phase = iota
	Entering
	Idle
	Celebrating
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case Entering:
		return "entering"
	case Idle:
		return "idle"
	case Celebrating:
		return "celebrating"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Open reports whether an overlay is mounted in this phase.
func (p Phase) Open() bool {
	return p != Closed
}

// Event drives a phase transition.
type Event int

const (
	EventActivate Event = iota
	EventEntryDone
	EventNewBlock
	EventCelebrationDone
	EventDismiss
	EventExitDone
)

func (e Event) String() string {
	switch e {
	case EventActivate:
		return "activate"
	case EventEntryDone:
		return "entry_done"
	case EventNewBlock:
		return "new_block"
	case EventCelebrationDone:
		return "celebration_done"
	case EventDismiss:
		return "dismiss"
	case EventExitDone:
		return "exit_done"
	default:
		return "unknown"
	}
}

// Effect is a side effect the controller performs after a transition, in order.
type Effect int

const (
	EffectMount Effect = iota
	EffectStartFeed
	EffectShowContent
	EffectStartPulse
	EffectSuppressFeed
	EffectPausePulse
	EffectHaptics
	EffectPlayCelebration
	EffectReleaseFeed
	EffectResumePulse
	EffectStopFeed
	EffectStopPulse
	EffectCancelCelebration
	EffectStartExit
	EffectUnmount
	EffectEndSession
)

var effectNames = [...]string{
	"mount", "start_feed", "show_content", "start_pulse", "suppress_feed", "pause_pulse",
	"haptics", "play_celebration", "release_feed", "resume_pulse", "stop_feed", "stop_pulse",
	"cancel_celebration", "start_exit", "unmount", "end_session",
}

func (e Effect) String() string {
	if int(e) < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

type transitionKey struct {
	from  Phase
	event Event
}

type transitionRule struct {
	to      Phase
	effects []Effect
}

var dismissEffects = []Effect{EffectStopFeed, EffectStopPulse, EffectCancelCelebration, EffectStartExit}

var transitions = map[transitionKey]transitionRule{
	{Closed, EventActivate}: {Entering, []Effect{EffectMount, EffectStartFeed}},

	{Entering, EventEntryDone}: {Idle, []Effect{EffectShowContent, EffectStartPulse}},

	{Idle, EventNewBlock}: {Celebrating, []Effect{
		EffectSuppressFeed, EffectPausePulse, EffectHaptics, EffectPlayCelebration,
	}},

	{Celebrating, EventCelebrationDone}: {Idle, []Effect{EffectReleaseFeed, EffectShowContent, EffectResumePulse}},

	{Entering, EventDismiss}:    {Exiting, dismissEffects},
	{Idle, EventDismiss}:        {Exiting, dismissEffects},
	{Celebrating, EventDismiss}: {Exiting, dismissEffects},

	{Exiting, EventExitDone}: {Closed, []Effect{EffectUnmount, EffectEndSession}},
}

// Transition returns the next phase and the effects to run for event in phase p.
// ok is false when the event does not apply, in which case nothing happens:
// activating an open overlay, dismissing a closing one and a new block outside Idle all land here.
func Transition(p Phase, e Event) (next Phase, effects []Effect, ok bool) {
	rule, ok := transitions[transitionKey{p, e}]
	if !ok {
		return p, nil, false
	}
	return rule.to, append([]Effect(nil), rule.effects...), true
}
