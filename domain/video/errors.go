package video

import "errors"

var (
	// ErrOpenVideo is returned when a file cannot be probed or decoded.
	ErrOpenVideo = errors.New("video: cannot open video")
	// ErrNoVideoStream is returned when a container has no video stream.
	ErrNoVideoStream = errors.New("video: no video stream")
	// ErrCreateOutput is returned when the encoder cannot write the output.
	ErrCreateOutput = errors.New("video: cannot create output")
	// ErrNothingToExport is returned for a job with neither crop nor trim.
	ErrNothingToExport = errors.New("video: nothing to export")
	// ErrCropOutOfBounds is returned when a crop does not fit the frame.
	ErrCropOutOfBounds = errors.New("video: crop outside frame")
	// ErrExportRunning is returned when an export is already in progress.
	ErrExportRunning = errors.New("video: export already running")
	// ErrFrameOutOfRange is returned for a frame index past the last frame.
	ErrFrameOutOfRange = errors.New("video: frame index out of range")
)
