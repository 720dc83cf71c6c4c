// Package formats provides parsers for Quake3-family text asset formats.
package formats

// Note: shader scripts (.shader) are implemented in shader.go
