package mcp

// ExecuteCommandInput is the input for the execute_command tool.
type ExecuteCommandInput struct {
	Line string `json:"line" jsonschema:"required,One protocol command line, e.g. GRect.create(\"r1\", 40, 30)"`
}

// ExecuteCommandOutput is the output for the execute_command tool.
type ExecuteCommandOutput struct {
	// Lines holds everything the back-end wrote since the previous call:
	// the reply (if the command has one) and any events.
	Lines []string `json:"lines"`
	// Exited is set once GWindow.exitGraphics has run; later calls fail.
	Exited bool `json:"exited,omitempty"`
}

// ListObjectsInput is the input for the list_objects tool.
type ListObjectsInput struct{}

// ObjectInfo describes a registered graphical object.
type ObjectInfo struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// ListObjectsOutput is the output for the list_objects tool.
type ListObjectsOutput struct {
	Objects []ObjectInfo `json:"objects"`
	Windows []string     `json:"windows"`
	Timers  []string     `json:"timers"`
	Sounds  []string     `json:"sounds"`
}

// SnapshotWindowInput is the input for the snapshot_window tool.
type SnapshotWindowInput struct {
	ID   string `json:"id" jsonschema:"required,Window id"`
	Path string `json:"path" jsonschema:"required,Output file; the extension picks the format (png by default)"`
}

// SnapshotWindowOutput is the output for the snapshot_window tool.
type SnapshotWindowOutput struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
