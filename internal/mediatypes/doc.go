// Package mediatypes defines the file extensions the library scanner
// recognises as videos and external subtitles.
package mediatypes
