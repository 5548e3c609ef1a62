package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Merge concatenates the input audio files, in the order given, into a single
// file at outputPath using ffmpeg's concat demuxer. The caller is responsible
// for ordering (see SortSegments). Merge does not retry: a failed merge
// leaves the individual segment files on disk as a usable fallback.
func Merge(ctx context.Context, inputFiles []string, outputPath string) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no input files provided")
	}

	for _, f := range inputFiles {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("audio file for merging not found: %s: %w", f, err)
		}
	}

	// Single file case - just copy
	if len(inputFiles) == 1 {
		data, err := os.ReadFile(inputFiles[0])
		if err != nil {
			return fmt.Errorf("failed to read single input file: %w", err)
		}
		return os.WriteFile(outputPath, data, 0o644)
	}

	// Create concat list file
	listPath := outputPath + ".txt"
	var lines []string
	for _, f := range inputFiles {
		// FFmpeg concat demuxer requires escaped paths
		escapedPath := strings.ReplaceAll(f, "'", "'\\''")
		lines = append(lines, fmt.Sprintf("file '%s'", escapedPath))
	}

	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	defer os.Remove(listPath)

	// -f concat: use concat demuxer
	// -safe 0: allow absolute paths
	// -c copy: copy streams without re-encoding
	// -y: overwrite output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// Duration uses ffprobe to get the duration of an audio file in milliseconds.
func Duration(ctx context.Context, audioPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return int(durationSec * 1000), nil
}

// CheckFFmpegAvailable checks if ffmpeg is available on PATH.
func CheckFFmpegAvailable() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return nil
}
