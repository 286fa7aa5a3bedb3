package cluster

import "errors"

// Sentinel errors returned by BuildTree and ParseLinkage.
var (
	// ErrEmptyTemplates indicates BuildTree was called with no items.
	ErrEmptyTemplates = errors.New("cluster: no templates to build a tree from")

	// ErrNilComparator indicates BuildTree was called without a Comparator.
	ErrNilComparator = errors.New("cluster: comparator is nil")

	// ErrUnknownLinkage indicates an unrecognized linkage name.
	ErrUnknownLinkage = errors.New("cluster: unknown linkage")
)
