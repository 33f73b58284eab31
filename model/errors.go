package model

import "errors"

var (
	// ErrInvalidLayer is returned by [Passage.CreateNode] when the target
	// layer is not owned by the passage.
	ErrInvalidLayer = errors.New("layer does not belong to this passage")

	// ErrDuplicateLayer is returned by [NewLayer] when a layer with the same
	// ID already exists in the passage.
	ErrDuplicateLayer = errors.New("duplicate layer ID")

	// ErrDuplicateNodeID is returned when a node with the same ID already
	// exists in the passage. Node IDs must be unique across all layers.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrCycleViolation is returned by [Passage.AddEdge] when adding a
	// non-remote edge would create a cycle among primary edges.
	ErrCycleViolation = errors.New("edge would create a cycle among primary edges")

	// ErrDuplicateParent is returned by [Passage.AddEdge] when the child
	// already has a primary parent and the new edge is also non-remote.
	ErrDuplicateParent = errors.New("child already has a primary parent")

	// ErrSelfReference is returned by [FoundationalLayer.AttachRemote] when
	// source and target are the same node.
	ErrSelfReference = errors.New("remote edge references its own source")

	// ErrForeignLayer is returned by [FoundationalLayer.AttachRemote] when
	// the target is not part of the same foundational layer.
	ErrForeignLayer = errors.New("remote target belongs to a different layer")

	// ErrInsufficientScenes is returned by [FoundationalLayer.CreateLinkage]
	// when fewer than two scenes are supplied.
	ErrInsufficientScenes = errors.New("linkage requires at least two scenes")

	// ErrEmptyInput is returned by [BuildTerminals] when the token sequence
	// is empty. A passage must anchor at least one terminal.
	ErrEmptyInput = errors.New("terminal layer requires at least one token")

	// ErrMalformedInput is returned by the converters when a serialized
	// document is not well-formed or contains dangling references.
	ErrMalformedInput = errors.New("malformed serialized passage")

	// ErrMissingNode is returned by lookups and edge creation when a node
	// does not exist in the passage.
	ErrMissingNode = errors.New("node not found in passage")
)
