package magick

// StripArgs re-encodes src into dst dropping every profile and comment.
// The output format follows dst's extension.
func StripArgs(src, dst string) []string {
	return []string{src, "-strip", dst}
}

// ConvertArgs re-encodes src into dst with the format chosen by dst's
// extension and no other changes.
func ConvertArgs(src, dst string) []string {
	return []string{src, dst}
}
