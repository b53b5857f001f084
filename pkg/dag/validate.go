package dag

// Reason explains why a proposed dependency was rejected.
type Reason string

const (
	ReasonSelfDependency Reason = "self-dependency"
	ReasonDuplicate      Reason = "duplicate dependency"
	ReasonCycle          Reason = "would create a cycle"
)

// Verdict is the outcome of [Validate]. Reason is empty when Valid is true.
type Verdict struct {
	Valid  bool
	Reason Reason
}

// Validate decides whether the edge source→target may be added to existing.
// Checks run in order and stop at the first failure: self-dependency,
// duplicate (source, target) pair, then cycle detection on the edge set with
// the candidate appended. Validate has no side effects.
func Validate(source, target string, existing []Edge) Verdict {
	if source == target {
		return Verdict{Reason: ReasonSelfDependency}
	}
	for _, e := range existing {
		if e.From == source && e.To == target {
			return Verdict{Reason: ReasonDuplicate}
		}
	}
	candidate := make([]Edge, len(existing), len(existing)+1)
	copy(candidate, existing)
	candidate = append(candidate, Edge{From: source, To: target})
	if HasCycle(candidate) {
		return Verdict{Reason: ReasonCycle}
	}
	return Verdict{Valid: true}
}
