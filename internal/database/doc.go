// Package database records stream history in a SQLite database.
//
// Every started stream becomes a [Session] row which is completed with an
// end time and exit status once its transcoder exits. The database runs in
// WAL mode and creates its schema on open.
package database
