package domain

// Phase defines the current lifecycle stage of a session.
type Phase string

const (
	PhaseIdle         Phase = "idle"         // Created, not yet started
	PhaseConnecting   Phase = "connecting"   // Waiting for the channel to report ready
	PhaseConnected    Phase = "connected"    // Frames flow, commands accepted
	PhaseDisconnected Phase = "disconnected" // Terminal for this session instance
)

// Accepting reports whether outbound commands may be submitted in this phase.
func (p Phase) Accepting() bool {
	return p == PhaseConnected
}
