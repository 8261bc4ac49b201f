// Package logtail reads the tail of the stash log file for the in-app
// activity pane.
//
// Read uses a ring buffer of maxLines entries, so memory is bounded by the
// number of lines kept rather than the size of the file. A missing file is
// not an error: a fresh install simply has nothing to show yet.
//
// Parse decodes the JSON lines written by the logging package into Entry
// values. Anything that does not decode is kept verbatim in Entry.Raw, so a
// console-format log still renders.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range logtail.ParseLines(lines) {
//		fmt.Println(e.Format())
//	}
//
// There is no file watching; the UI re-reads on its refresh tick.
package logtail
