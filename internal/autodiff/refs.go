package autodiff

import "weak"

// Provenance says how a saved variable refers back to the node that produced it.
type Provenance int

// Provenance kinds.
const (
	ProvenanceNone        Provenance = iota // no reference kept
	ProvenanceOwned                         // strong reference to the producer
	ProvenanceObserved                      // weak reference to the producer
	ProvenanceAccumulator                   // weak reference to a leaf's accumulator
)

// String returns the provenance kind name.
func (p Provenance) String() string {
	switch p {
	case ProvenanceOwned:
		return "owned"
	case ProvenanceObserved:
		return "observed"
	case ProvenanceAccumulator:
		return "accumulator"
	default:
		return "none"
	}
}

// producerRef is a reference from a saved variable to its producer.
// ownedRef keeps the producer alive; observedRef does not, which is what
// breaks the node -> saved variable -> same node cycle.
type producerRef interface {
	resolve() Node
	kind() Provenance
}

type ownedRef struct {
	node Node
}

func (r ownedRef) resolve() Node {
	return r.node
}

func (ownedRef) kind() Provenance {
	return ProvenanceOwned
}

type observedRef struct {
	anchor weak.Pointer[nodeAnchor]
}

func observe(n Node) observedRef {
	return observedRef{anchor: weak.Make(anchorOf(n))}
}

func (r observedRef) resolve() Node {
	if a := r.anchor.Value(); a != nil {
		return a.node
	}
	return nil
}

func (observedRef) kind() Provenance {
	return ProvenanceObserved
}
