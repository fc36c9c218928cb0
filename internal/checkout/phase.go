package checkout

type Phase string

const (
	PhaseDraft  Phase = "draft"
	PhasePlaced Phase = "placed"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether next follows p. A placed checkout is final.
func (p Phase) CanTransitionTo(next Phase) bool {
	return p == PhaseDraft && next == PhasePlaced
}
