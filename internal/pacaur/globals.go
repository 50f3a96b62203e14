package pacaur

import (
	"github.com/gookit/color"
)

// Global variables
var (
	pacmanBin  string
	aurBaseURL string
	CacheDir   string
	CacheStore string
	tmpDir     string
	Debug      bool
	ConfigFile = "/etc/pacaur.conf"
	version    = "dev" // overridden at build time
)

// color helpers
var (
	colInfo    = color.Info
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)
