//go:build gocv

package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"strconv"

	"gocv.io/x/gocv"
)

// VideoSource reads frames from a video file, stream URL or camera through
// OpenCV.
type VideoSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// OpenVideo opens target as a camera when it is an integer index and as a
// file or stream URL otherwise.
func OpenVideo(target string) (Source, error) {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	if index, convErr := strconv.Atoi(target); convErr == nil {
		capture, err = gocv.OpenVideoCapture(index)
	} else {
		capture, err = gocv.VideoCaptureFile(target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", target, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", target)
	}
	return &VideoSource{capture: capture, mat: gocv.NewMat()}, nil
}

// Next reads and converts the next frame. A failed read or an empty frame
// ends the stream.
func (s *VideoSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the capture device and frame buffer.
func (s *VideoSource) Close() error {
	if err := s.mat.Close(); err != nil {
		return err
	}
	return s.capture.Close()
}
