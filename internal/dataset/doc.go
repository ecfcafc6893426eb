// Package dataset builds filtered_dataset/: a copy of every source image
// that decodes cleanly, optionally joined by the validated outputs of
// earlier repairs. Sources are only ever read.
package dataset
