package speck

// State is the lifecycle position of a Core.
type State int

const (
	// Unauthenticated: no live session.
	Unauthenticated State = iota
	// Authenticated: a live session exists, no player yet.
	Authenticated
	// PlayerReady: a player and its event channel exist.
	PlayerReady
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case PlayerReady:
		return "player_ready"
	default:
		return "unknown"
	}
}
