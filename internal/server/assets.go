package server

import "embed"

//go:embed web/templates web/static
var assets embed.FS
