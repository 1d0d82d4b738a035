//go:build !gocv

package source

// OpenVideo is unavailable without gocv.
func OpenVideo(target string) (Source, error) {
	return nil, ErrVideoUnsupported
}
