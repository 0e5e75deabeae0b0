package graph

import "errors"

// ErrNodeNotFound indicates a (label, key) pair with no matching node.
var ErrNodeNotFound = errors.New("graph node not found")
