package probe

import "fmt"

// Result is the verdict of a single probe. It is a value, never an error:
// an unreadable or undecodable file is simply Valid=false with Err set.
type Result struct {
	Valid  bool
	Width  int
	Height int
	Format string // decoder name: jpeg, png, gif, bmp, tiff, webp
	Err    string
}

// Dimensions formats the size as "WxH".
func (r Result) Dimensions() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func invalid(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}
