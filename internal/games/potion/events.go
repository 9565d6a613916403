package potion

import "time"

// EventKind identifies something the front end may want to react to.
type EventKind int

const (
	EventCollect       EventKind = iota // Recipe potion picked in order
	EventFreeCollect                    // Potion picked outside the recipe
	EventWrongOrder                     // Recipe potion picked out of order
	EventDamage                         // Player lost lives
	EventExplosion                      // A bomb went off
	EventLevelComplete                  // Recipe finished
	EventLevelUp                        // Next level started
	EventGameOver
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventCollect:
		return "collect"
	case EventFreeCollect:
		return "free_collect"
	case EventWrongOrder:
		return "wrong_order"
	case EventDamage:
		return "damage"
	case EventExplosion:
		return "explosion"
	case EventLevelComplete:
		return "level_complete"
	case EventLevelUp:
		return "level_up"
	case EventGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Event is emitted by Step and read back through Game.Events.
type Event struct {
	Kind     EventKind
	At       time.Duration
	Level    int
	Points   int
	PotionID string
}
