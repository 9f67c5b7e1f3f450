package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Prober answers whether a video file carries an audio track.
// Every failure reads as false; a probe never fails a listing.
type Prober interface {
	HasAudio(ctx context.Context, path string) bool
}

const (
	ffprobeTimeout = 5 * time.Second

	// Box walk limits for the built-in container sniff
	maxBoxDepth = 4
	maxBoxCount = 4096
)

type prober struct {
	classifier  *Classifier
	ffprobePath string
	logger      *slog.Logger
}

// NewProber returns a prober that shells out to ffprobe when ffprobePath is
// set and otherwise reads MP4/QuickTime track handlers directly
func NewProber(classifier *Classifier, ffprobePath string, logger *slog.Logger) Prober {
	return &prober{
		classifier:  classifier,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

func (p *prober) HasAudio(ctx context.Context, path string) bool {
	if p.ffprobePath != "" {
		ok, err := ffprobeHasAudio(ctx, p.ffprobePath, path)
		if err == nil {
			return ok
		}
		p.logger.Debug("ffprobe failed, falling back to container sniff", "path", path, "error", err)
	}

	if !p.classifier.Sniffable(path) {
		return false
	}
	ok, err := sniffMP4Audio(path)
	if err != nil {
		p.logger.Debug("audio probe failed", "path", path, "error", err)
		return false
	}
	return ok
}

// ffprobeHasAudio lists the audio streams of path
func ffprobeHasAudio(ctx context.Context, ffprobe, path string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, ffprobeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe error: %w, output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.Contains(string(out), "audio"), nil
}

// sniffMP4Audio walks moov/trak/mdia boxes looking for a sound handler
func sniffMP4Audio(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}

	budget := maxBoxCount
	return walkBoxes(f, 0, info.Size(), 0, &budget)
}

var errBoxBudget = errors.New("too many boxes")

func walkBoxes(r io.ReaderAt, start, end int64, depth int, budget *int) (bool, error) {
	var header [16]byte
	for off := start; off+8 <= end; {
		*budget--
		if *budget < 0 {
			return false, errBoxBudget
		}

		if _, err := r.ReadAt(header[:8], off); err != nil {
			return false, err
		}
		size := int64(binary.BigEndian.Uint32(header[:4]))
		typ := string(header[4:8])
		headerLen := int64(8)

		switch size {
		case 0:
			size = end - off
		case 1:
			if _, err := r.ReadAt(header[8:16], off+8); err != nil {
				return false, err
			}
			size = int64(binary.BigEndian.Uint64(header[8:16]))
			headerLen = 16
		}
		if size < headerLen || off+size > end {
			return false, fmt.Errorf("malformed %q box at offset %d", typ, off)
		}

		switch typ {
		case "moov", "trak", "mdia":
			if depth < maxBoxDepth {
				found, err := walkBoxes(r, off+headerLen, off+size, depth+1, budget)
				if found || err != nil {
					return found, err
				}
			}
		case "hdlr":
			// version+flags(4) pre_defined(4) handler_type(4)
			var handler [4]byte
			if size-headerLen >= 12 {
				if _, err := r.ReadAt(handler[:], off+headerLen+8); err != nil {
					return false, err
				}
				if string(handler[:]) == "soun" {
					return true, nil
				}
			}
		}

		off += size
	}
	return false, nil
}
