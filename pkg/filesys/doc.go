// Package filesys is a convenience layer over filesystem primitives.
//
// A [File] wraps a path. It answers metadata queries, navigates to parents
// and children, reads and writes whole contents, and opens [Reader] and
// [Writer] handles with flock-based locking and seek helpers. Directory
// listings are narrowed with a [Filter]; package filter provides the usual
// ones.
//
// Every operation goes through the backend of the [System] the File was
// created from, so the same code runs on the real filesystem, on an
// in-memory one, or on a fault-injecting wrapper:
//
//	sys := filesys.New(filesys.Options{FS: fs.NewMemory()})
//	f, err := sys.File("/data/notes.txt").Mkfile("hello")
//	if err != nil {
//	    return err
//	}
//	content, _ := f.Get()
//
// Failures are [*Error] values; errors.Is matches them against the Kind
// sentinels ([ErrInput], [ErrRename], ...) and against the underlying OS
// error at the same time.
package filesys
