// Package camera grabs a still photo from a local capture device.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// Result is either a local file path or a cancellation.
type Result struct {
	Path      string
	Cancelled bool
}

type Camera interface {
	Capture(ctx context.Context) (Result, error)
}

// FFmpeg captures one frame from Device using the given input Format
// (v4l2, avfoundation, dshow) and writes it into Dir.
type FFmpeg struct {
	Device string
	Format string
	Dir    string
	Binary string
}

func (c *FFmpeg) args(out string) []string {
	in := ffmpeg_go.KwArgs{}
	if c.Format != "" {
		in["f"] = c.Format
	}
	return ffmpeg_go.Input(c.Device, in).
		Output(out, ffmpeg_go.KwArgs{"vframes": 1}).
		OverWriteOutput().
		GetArgs()
}

// Capture runs ffmpeg and compresses the frame. Cancelling ctx while ffmpeg
// runs yields a cancelled Result.
func (c *FFmpeg) Capture(ctx context.Context) (Result, error) {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create captures directory: %v", err)
	}

	raw := filepath.Join(c.Dir, "capture-"+uuid.NewString()+".jpg")
	binary := c.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, c.args(raw)...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		os.Remove(raw)
		return Result{Cancelled: true}, nil
	}
	if err != nil {
		os.Remove(raw)
		return Result{}, fmt.Errorf("ffmpeg: %v: %s", err, lastLine(stderr.String()))
	}
	defer os.Remove(raw)

	out, err := Compress(raw, c.Dir)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: out}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
