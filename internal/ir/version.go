package ir

// Version constants for the compiled graph document and compiler.
const (
	// IRVersion is the graph document schema version.
	IRVersion = "1"

	// CompilerVersion is the property compiler version.
	CompilerVersion = "0.1.0"
)
