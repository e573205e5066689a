package xeokit

import "log/slog"

// ViewerOption configures a Viewer during creation.
//
// Example:
//
//	// Default configuration
//	viewer, err := xeokit.NewViewer(adapter)
//
//	// With occlusion pass and entity offsets
//	viewer, err := xeokit.NewViewer(adapter,
//	    xeokit.WithOcclusionPass(true),
//	    xeokit.WithEntityOffsets(true))
type ViewerOption func(*viewerOptions)

// viewerOptions holds optional configuration for Viewer creation.
type viewerOptions struct {
	occlusionPass bool
	entityOffsets bool
	compiler      func(source string) ([]uint32, error)
	logger        *slog.Logger
}

func defaultViewerOptions() viewerOptions {
	return viewerOptions{
		occlusionPass: true,
	}
}

// WithOcclusionPass enables or disables the occlusion silhouette pass.
// It is enabled by default; disabling it saves one draw call per layer
// per frame when occlusion culling is not consumed.
func WithOcclusionPass(enabled bool) ViewerOption {
	return func(o *viewerOptions) {
		o.occlusionPass = enabled
	}
}

// WithEntityOffsets allocates a per-vertex world offset buffer for every
// layer, allowing objects to be translated after batching without
// rebuilding. Costs 12 bytes per vertex; disabled by default.
func WithEntityOffsets(enabled bool) ViewerOption {
	return func(o *viewerOptions) {
		o.entityOffsets = enabled
	}
}

// WithLogger routes log output from the library to the given logger.
// Equivalent to calling SetLogger before NewViewer; logging is silent by
// default.
func WithLogger(l *slog.Logger) ViewerOption {
	return func(o *viewerOptions) {
		o.logger = l
	}
}

// WithShaderCompiler overrides the WGSL to SPIR-V translation used when
// building programs. The default translator runs on the CPU via naga.
// Intended for tests and for backends that consume WGSL directly.
func WithShaderCompiler(compile func(source string) ([]uint32, error)) ViewerOption {
	return func(o *viewerOptions) {
		o.compiler = compile
	}
}
