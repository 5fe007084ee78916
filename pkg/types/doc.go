// Package types defines the configuration, field kinds, option catalogs,
// view adapter interface, and standard error types shared by the typesmith
// editor core.
package types
