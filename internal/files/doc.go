// Package files provides file discovery, management and directory watching
// for the report pipeline.
//
// Discovery finds input documents by extension in a stable, name-sorted
// order. Manager resolves paths against the configured application
// directories and filters input folders with DeleteUnwanted. Watcher batches
// fsnotify events so a directory of new documents is processed once it has
// settled.
package files
