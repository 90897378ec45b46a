package config

const (
	// MaxWorkspaceTitleLength is the maximum length for workspace titles.
	// Titles are shown on dashboard cards, so they are kept very short.
	MaxWorkspaceTitleLength = 16

	// MaxCollectionTitleLength is the maximum length for collection titles.
	MaxCollectionTitleLength = 64

	// MaxCollectionDescriptionLength is the maximum length for collection descriptions.
	MaxCollectionDescriptionLength = 500

	// MaxCollectionDepth bounds the ancestor walk when moving a collection.
	// Deeper trees are rejected as corrupt rather than walked forever.
	MaxCollectionDepth = 64

	// MaxCanvasNodes is the maximum number of nodes accepted in one sync.
	MaxCanvasNodes = 5000

	// MaxCanvasEdges is the maximum number of edges accepted in one sync.
	MaxCanvasEdges = 10000

	// MaxGraphIDLength is the maximum length of a client-generated node or edge id.
	MaxGraphIDLength = 255
)
