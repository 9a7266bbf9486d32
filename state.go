package yapnet

// SessionState is the identity state of a session.
type SessionState int

const (
	// Anonymous is the initial state; no handshake has been attempted.
	Anonymous SessionState = iota

	// PendingRegistration means a hello was submitted and no welcome has arrived yet.
	PendingRegistration

	// PendingResume means a resume was submitted and no welcome has arrived yet.
	PendingResume

	// Authenticated means the server sent a welcome. It is never left for the
	// lifetime of the session, even across reconnects.
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case PendingRegistration:
		return "pending-registration"
	case PendingResume:
		return "pending-resume"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
