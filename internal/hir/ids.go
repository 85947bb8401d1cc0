// Package hir holds the typed IR the compiler exports for analysis: function
// bodies after type checking, with resolved types, binding tables and the
// coercion steps inference inserted at every node. The linter never builds
// this IR itself; bundles produced by `surge build --emit-ir` are loaded as-is.
package hir

// NodeID identifies an expression or pattern node inside one body. IDs are
// dense per body and start at 1; 0 is reserved as the invalid marker.
type NodeID uint32

// NoNodeID marks the absence of a node reference.
const NoNodeID NodeID = 0

// IsValid reports whether the node ID refers to an allocated node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// BodyID indexes a body inside its module's body list.
type BodyID uint32

// NoBodyID marks the absence of a body reference.
const NoBodyID BodyID = 0

// IsValid reports whether the body ID refers to an allocated body.
func (id BodyID) IsValid() bool { return id != NoBodyID }
