// Package host defines the contract between a hostdom session and the
// native UI layer that owns the real views.
//
// A host receives four kinds of calls, always in the order the session
// issued them: view creation, view prop updates, incremental child
// management and bulk child replacement. Tags are the integer ids the
// session allocated for its nodes; the root tag identifies the host's
// top-level container and is never allocated to a node.
//
// The package also carries the data needed to translate DOM vocabulary into
// host vocabulary: the component TypeTable (tag name to host view type) and
// the ViewConfigs that whitelist and normalize the props each view class
// accepts.
package host

import "context"

// Props is the prop payload of a host call. Values are nil, bool, numbers,
// strings, []any or map[string]any.
type Props = map[string]any

// Host receives view operations from a session.
type Host interface {
	// CreateView creates a view of hostType under the given root.
	CreateView(ctx context.Context, tag int, hostType string, rootTag int, props Props) error

	// UpdateView merges props into an existing view. A nil value removes
	// the key.
	UpdateView(ctx context.Context, tag int, viewClass string, props Props) error

	// ManageChildren edits a container's children in one step. Indices in
	// moveFrom and removeAt refer to the current children; moveTo and addAt
	// are destination indices in the resulting list.
	ManageChildren(ctx context.Context, container int, moveFrom, moveTo []int, addTags, addAt []int, removeAt []int) error

	// SetChildren replaces a container's children.
	SetChildren(ctx context.Context, container int, tags []int) error
}
