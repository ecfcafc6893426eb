// Package magick builds and runs ImageMagick re-encode commands and turns
// their stderr into short, classified failure reasons.
//
// ImageMagick 7 installs a single `magick` binary; 6.x installs `convert`.
// The encoder prefers `magick` and falls back to `convert` unless a binary
// is configured explicitly.
package magick
