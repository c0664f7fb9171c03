package linse

import "embed"

// embedded holds the default reference data shipped with the package.
//
//go:embed data
var embedded embed.FS
