package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the type of a library file.
type FileType string

const (
	// FileTypeVideo represents a playable video file.
	FileTypeVideo FileType = "video"
	// FileTypeSubtitle represents an external subtitle file that can be burned in.
	FileTypeSubtitle FileType = "subtitle"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".ts":   true,
}

// SubtitleExtensions maps file extensions to whether they are subtitle
// formats the subtitles filter can render.
var SubtitleExtensions = map[string]bool{
	".srt": true,
	".ass": true,
	".ssa": true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mkv").
func GetFileType(ext string) FileType {
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if SubtitleExtensions[ext] {
		return FileTypeSubtitle
	}
	return FileTypeOther
}

// TypeOf classifies a file name by its extension, case-insensitively.
func TypeOf(name string) FileType {
	return GetFileType(strings.ToLower(filepath.Ext(name)))
}
