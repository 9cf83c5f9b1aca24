package agents

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const saverLogPrefix = "agents:saver"

// saveArtifact writes generated content under dataDir/subdir/filename and
// returns the path. A save failure is logged and returns an empty path; the
// caller keeps the in-memory result either way.
func saveArtifact(dataDir, subdir, filename, content string) string {
	if dataDir == "" {
		return ""
	}
	folder := filepath.Join(dataDir, subdir)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to create %s: %v", saverLogPrefix, folder, err))
		return ""
	}
	path := filepath.Join(folder, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to write %s: %v", saverLogPrefix, path, err))
		return ""
	}
	return path
}

// slugify converts free text into a safe filename fragment.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	slug := b.String()
	if len(slug) > 64 {
		slug = slug[:64]
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}
