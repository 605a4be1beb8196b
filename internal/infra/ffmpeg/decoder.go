package ffmpeg

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/E-CAM/presentation-extractor/internal/domain/port"
	"github.com/E-CAM/presentation-extractor/internal/slides"
)

// Decoder shells out to ffmpeg/ffprobe to probe videos, stream grayscale
// frames for analysis, and render stills at slide midpoints.
type Decoder struct {
	analysisFPS float64
	logger      *zap.Logger
}

// NewDecoder builds a Decoder. analysisFPS caps the rate frames are fed to
// the detector; zero means decode at the native frame rate.
func NewDecoder(analysisFPS float64, logger *zap.Logger) *Decoder {
	return &Decoder{analysisFPS: analysisFPS, logger: logger}
}

type ffprobeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (d *Decoder) Probe(ctx context.Context, videoPath string) (*port.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", videoPath)
	}

	stream := probed.Streams[0]
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("invalid video dimensions %dx%d", stream.Width, stream.Height)
	}

	fps, err := parseFrameRate(stream.RFrameRate)
	if err != nil {
		return nil, fmt.Errorf("parse frame rate %q: %w", stream.RFrameRate, err)
	}

	info := &port.VideoInfo{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    fps,
	}
	if stream.NbFrames != "" {
		if n, err := strconv.Atoi(stream.NbFrames); err == nil {
			info.FrameCount = n
		}
	}
	if probed.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			info.Duration = dur
		}
	}

	d.logger.Info("video probed",
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FPS),
		zap.Float64("duration", info.Duration),
	)
	return info, nil
}

func parseFrameRate(raw string) (float64, error) {
	num, den, found := strings.Cut(raw, "/")
	if !found {
		return strconv.ParseFloat(raw, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator")
	}
	return n / d, nil
}

// OpenFrames starts an ffmpeg process writing raw 8-bit grayscale frames to a
// pipe and returns a FrameSource reading from it. The returned closer must be
// called once the stream is drained or abandoned.
func (d *Decoder) OpenFrames(ctx context.Context, videoPath string, info *port.VideoInfo) (slides.FrameSource, func() error, error) {
	fps := info.FPS
	if d.analysisFPS > 0 && d.analysisFPS < fps {
		fps = d.analysisFPS
	}
	if fps <= 0 {
		return nil, nil, fmt.Errorf("non-positive frame rate %f", fps)
	}

	args := []string{
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
	}
	if fps != info.FPS {
		args = append(args, "-vf", fmt.Sprintf("fps=%g", fps))
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	src := &frameStream{
		reader: bufio.NewReaderSize(stdout, info.Width*info.Height),
		width:  info.Width,
		height: info.Height,
		fps:    fps,
	}
	closer := func() error {
		_ = cmd.Process.Kill()
		return cmd.Wait()
	}
	return src, closer, nil
}

type frameStream struct {
	reader *bufio.Reader
	width  int
	height int
	fps    float64
	index  uint64
}

func (s *frameStream) Next() (*slides.Frame, error) {
	buf := make([]byte, s.width*s.height)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated frame %d: %w", s.index, err)
		}
		return nil, fmt.Errorf("read frame %d: %w", s.index, err)
	}

	img := &image.Gray{
		Pix:    buf,
		Stride: s.width,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
	frame := &slides.Frame{
		Index:     s.index,
		Timestamp: time.Duration(float64(s.index) / s.fps * float64(time.Second)),
		Pixels:    img,
	}
	s.index++
	return frame, nil
}

// Snapshot renders a single PNG still at the given offset.
func (d *Decoder) Snapshot(ctx context.Context, videoPath string, at time.Duration, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", at.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-y",
		outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg snapshot at %s: %w, output: %s", at, err, string(output))
	}
	return nil
}
