// Package library lists the playable content of the media library.
//
// The library root holds one directory per show or collection. [Library.Scan]
// walks each of them for video files (episodes) and external subtitle files
// and caches the result until a filesystem change under the root is seen by
// [Library.Watch].
package library
