package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFrame(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFrameArgs(t *testing.T) {
	joined := strings.Join(FrameArgs("/v/clip.mp4", 45, 30), " ")
	assert.Contains(t, joined, "-ss 1.500000")
	assert.Contains(t, joined, "-i /v/clip.mp4")
	assert.Contains(t, joined, "-frames:v 1")
	assert.Contains(t, joined, "pipe:")
}

func TestFrameReader_ReadFrame(t *testing.T) {
	data := pngFrame(t, 8, 4, color.RGBA{R: 200, A: 255})
	var gotName string
	run := func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
		gotName = name
		_, err := stdout.Write(data)
		return err
	}
	r := NewFrameReader(Info{Path: "clip.mp4", Width: 8, Height: 4, FPS: 25, TotalFrames: 10}, "/opt/ffmpeg", run, discardLogger)
	img, err := r.ReadFrame(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "/opt/ffmpeg", gotName)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = r.ReadFrame(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrFrameOutOfRange))
}

func TestFrameReader_EmptyOutput(t *testing.T) {
	run := func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error { return nil }
	r := NewFrameReader(Info{Path: "clip.mp4", FPS: 25, TotalFrames: 10}, "", run, nil)
	_, err := r.ReadFrame(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrFrameOutOfRange))
}

func TestFrameLoader_KeepsLatest(t *testing.T) {
	data := pngFrame(t, 4, 4, color.RGBA{G: 255, A: 255})
	run := func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
		_, err := stdout.Write(data)
		return err
	}
	reader := NewFrameReader(Info{Path: "clip.mp4", Width: 4, Height: 4, FPS: 25, TotalFrames: 50}, "", run, discardLogger)
	loader := NewFrameLoader(context.Background(), reader, discardLogger)
	loader.Request(5)
	loader.Request(7)

	require.Eventually(t, func() bool {
		return !loader.Busy() && loader.LatestFrame().Index == 7
	}, 5*time.Second, time.Millisecond, "loader never produced frame 7")
	snap := loader.LatestFrame()
	require.NoError(t, snap.Err)
	assert.NotNil(t, snap.Image)
	assert.NotZero(t, snap.Sequence)
}

func TestFrameLoader_RecoversFromDecoderPanic(t *testing.T) {
	data := pngFrame(t, 4, 4, color.RGBA{B: 255, A: 255})
	var calls atomic.Int32
	run := func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
		if calls.Add(1) == 1 {
			panic("decoder crashed")
		}
		_, err := stdout.Write(data)
		return err
	}
	reader := NewFrameReader(Info{Path: "clip.mp4", Width: 4, Height: 4, FPS: 25, TotalFrames: 50}, "", run, discardLogger)
	loader := NewFrameLoader(context.Background(), reader, discardLogger)

	loader.Request(1)
	require.Eventually(t, func() bool {
		return !loader.Busy() && loader.LatestFrame().Sequence == 1
	}, 5*time.Second, time.Millisecond, "loader stayed busy after a panic")
	failed := loader.LatestFrame()
	assert.Equal(t, 1, failed.Index)
	require.Error(t, failed.Err)
	assert.Contains(t, failed.Err.Error(), "decoder crashed")
	assert.Nil(t, failed.Image)

	loader.Request(2)
	require.Eventually(t, func() bool {
		return !loader.Busy() && loader.LatestFrame().Sequence == 2
	}, 5*time.Second, time.Millisecond, "loader did not decode after a panic")
	snap := loader.LatestFrame()
	assert.Equal(t, 2, snap.Index)
	require.NoError(t, snap.Err)
	assert.NotNil(t, snap.Image)
	assert.Equal(t, int32(2), calls.Load())
}
