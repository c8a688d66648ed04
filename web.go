// Package liftlog embeds the web frontend served by cmd/liftlog.
package liftlog

import "embed"

// WebFS holds web/templates and web/static.
//
//go:embed web/templates web/static
var WebFS embed.FS
