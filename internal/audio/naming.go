// Package audio handles the generated segment files: the on-disk naming
// convention, chronological ordering, and the ffmpeg-backed merge into one
// output artifact.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Segment files are named {job}_chunk_NNNN_seg_NNNN.wav. Only the first
// segment path of a chunk is persisted in the store; the full list is
// recovered from this pattern at merge time.
var segmentPattern = regexp.MustCompile(`_chunk_(\d+)_seg_(\d+)\.wav$`)

// SegmentFileName returns the output file name for one synthesis segment.
func SegmentFileName(jobName string, chunkIndex, segmentIndex int) string {
	return fmt.Sprintf("%s_chunk_%04d_seg_%04d.wav", jobName, chunkIndex, segmentIndex)
}

// MergedFileName returns the file name of the merged output artifact.
func MergedFileName(jobName string) string {
	return jobName + "_merged.wav"
}

// SegmentFiles enumerates every generated segment file for a job in its
// output directory, returned in chronological (chunk, segment) order.
func SegmentFiles(outputDir, jobName string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", outputDir, err)
	}

	prefix := jobName + "_chunk_"
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && segmentPattern.MatchString(name) {
			paths = append(paths, filepath.Join(outputDir, name))
		}
	}

	SortSegments(paths)
	return paths, nil
}

// SortSegments orders segment file paths by numeric (chunk index, segment
// index), never lexically: chunk 2 sorts before chunk 10. Paths that don't
// match the segment pattern sort last, lexically.
func SortSegments(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ci, si, oki := segmentIndices(paths[i])
		cj, sj, okj := segmentIndices(paths[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return paths[i] < paths[j]
		}
		if ci != cj {
			return ci < cj
		}
		return si < sj
	})
}

func segmentIndices(path string) (chunk, segment int, ok bool) {
	m := segmentPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, 0, false
	}
	chunk, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	segment, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return chunk, segment, true
}
