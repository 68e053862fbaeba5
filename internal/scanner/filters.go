package scanner

import (
	"path/filepath"
	"strings"

	"github.com/ivoronin/dupedog/internal/types"
)

// pathBlacklist drops any entry whose absolute path begins with one of
// these system prefixes, or contains one of the trash-directory
// markers, regardless of filter settings.
var pathBlacklist = []string{
	"/System", "/Library", "/Windows", "/bin", "/usr/bin", "/usr/sbin",
	"/dev", "/proc", "/sys", "/etc", "/var/lib", "/var/cache",
}

var pathBlacklistSubstrings = []string{".Trash", "$RECYCLE.BIN"}

// dirBlacklist prunes the entire subtree when any path component equals
// one of these names.
var dirBlacklist = map[string]bool{
	"node_modules": true, "venv": true, ".venv": true, "env": true,
	"target": true, "dist": true, "build": true, "__pycache__": true,
	".git": true, ".hg": true, ".svn": true, ".vscode": true, ".idea": true,
}

// Extension sets: one per optional category flag, giving the extensions
// it admits. Documents and audio (alwaysExtensions) are always admitted
// regardless of filter flags.
var (
	imageExtensions = extSet("jpg", "jpeg", "png", "gif", "webp", "heic", "tiff", "bmp")
	videoExtensions = extSet("mp4", "mov", "avi", "mkv", "wmv", "flv", "webm")
	zipExtensions   = extSet("zip", "tar", "gz", "7z", "rar")
	alwaysExtensions = extSet(
		"pdf", "docx", "xlsx", "pptx", "txt", "md",
		"mp3", "wav", "flac", "m4a", "ogg",
	)
)

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// isPathBlacklisted reports whether the absolute path should be dropped
// unconditionally, independent of scan filters.
func isPathBlacklisted(absPath string) bool {
	for _, prefix := range pathBlacklist {
		if absPath == prefix || strings.HasPrefix(absPath, prefix+string(filepath.Separator)) {
			return true
		}
	}
	for _, sub := range pathBlacklistSubstrings {
		if strings.Contains(absPath, sub) {
			return true
		}
	}
	return false
}

// isDirBlacklisted reports whether a directory name should have its
// subtree pruned.
func isDirBlacklisted(name string) bool {
	return dirBlacklist[name]
}

// admitExtension reports whether filename's extension is admitted by
// the given filter set. Extension matching is case-insensitive.
func admitExtension(name string, f types.ScanFilters) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		// No extension: admitted only if it happens to fall in the
		// always-on categories, which it can't, so such files are
		// dropped unless the caller wants everything - the whitelist
		// design means extensionless files are never admitted.
		return false
	}

	if alwaysExtensions[ext] {
		return true
	}
	if f.ScanImages && imageExtensions[ext] {
		return true
	}
	if f.ScanVideos && videoExtensions[ext] {
		return true
	}
	if f.ScanZips && zipExtensions[ext] {
		return true
	}
	return false
}
