// Package probe decides whether a file is a structurally valid image by
// decoding it completely. Header parsing alone is not enough: truncated
// scans and corrupt chunks only surface when the pixel data is read.
//
// Decoders are registered for JPEG, PNG and GIF from the standard library
// and BMP, TIFF and WebP from golang.org/x/image.
package probe
