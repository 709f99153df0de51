// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Embedded source fields.
	FieldHostFile    = "host_file"
	FieldVirtualFile = "virtual_file"
	FieldExtension   = "extension"
	FieldRealEnd     = "real_end"
	FieldBlocks      = "blocks"
	FieldLanguage    = "language"

	// Template compiler fields.
	FieldCompiler = "compiler"
	FieldShape    = "shape"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesLoaded     = "files_loaded"
	FieldIssuesTotal     = "issues_total"
	FieldEvent           = "event"
	FieldDuration        = "duration"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
