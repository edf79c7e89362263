package mesh

import "fmt"

// TopologyError reports malformed mesh adjacency, such as a neighbor search
// over an interior edge with no resolvable element on the opposite side.
// It is not recoverable: a pattern built over a broken topology would
// silently corrupt the enclosing Newton iteration.
type TopologyError struct {
	Msg string
}

func (e *TopologyError) Error() string {
	return "mesh topology: " + e.Msg
}

func topologyErrorf(format string, args ...interface{}) error {
	return &TopologyError{Msg: fmt.Sprintf(format, args...)}
}
