// Package configs embeds the default site table.
package configs

import _ "embed"

//go:embed sites.yaml
var Sites []byte
