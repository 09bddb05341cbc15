package ui

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir     string `env:"HOME"`
	EnableMouse bool   `env:"READALOUD_MOUSE"`
	ShowHidden  bool   `env:"READALOUD_SHOW_HIDDEN"`

	// Width the chunk preview wraps at, 0 for the terminal width.
	PreviewWidth uint `env:"READALOUD_PREVIEW_WIDTH" envDefault:"72"`

	// File to open at start, empty to show the file picker.
	Path string

	// Reopen the document when it changes on disk.
	Watch bool
}
