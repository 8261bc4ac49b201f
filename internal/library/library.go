// Package library holds pure helpers over loaded file records: filtering,
// grouping, counting and name classification. Nothing here touches the
// network or the store.
package library

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/five82/stash/internal/nas"
)

const rootFolder = "root"

// Search keeps files whose name contains q, ignoring case. An empty query
// returns files unchanged.
func Search(files []nas.File, q string) []nas.File {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return files
	}
	out := make([]nas.File, 0, len(files))
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}

// FilterType keeps files of type t. "all" and the empty string keep everything.
func FilterType(files []nas.File, t string) []nas.File {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" || t == "all" {
		return files
	}
	want := nas.ParseFileType(t)
	out := make([]nas.File, 0, len(files))
	for _, f := range files {
		if f.Type == want {
			out = append(out, f)
		}
	}
	return out
}

// Counts summarises a listing by file type.
type Counts struct {
	Total  int
	ByType map[nas.FileType]int
}

// Of returns the count for t.
func (c Counts) Of(t nas.FileType) int {
	return c.ByType[t]
}

// CountByType tallies files per type.
func CountByType(files []nas.File) Counts {
	c := Counts{Total: len(files), ByType: make(map[nas.FileType]int)}
	for _, f := range files {
		c.ByType[f.Type]++
	}
	return c
}

// MonthGroup is one calendar month of watch history.
type MonthGroup struct {
	Key   string // "YYYY-M", month not zero-padded
	Month time.Time
	Files []nas.File
}

// Label renders the group heading.
func (g MonthGroup) Label() string {
	return fmt.Sprintf("%s (%d files)", g.Month.Format("January 2006"), len(g.Files))
}

// GroupByMonth buckets watched files by the month of WatchedAt, in loc.
// Groups and the files inside them are ordered newest first. Files never
// watched are skipped.
func GroupByMonth(files []nas.File, loc *time.Location) []MonthGroup {
	if loc == nil {
		loc = time.Local
	}
	watched := make([]nas.File, 0, len(files))
	for _, f := range files {
		if f.WatchedAt != nil {
			watched = append(watched, f)
		}
	}
	sort.SliceStable(watched, func(i, j int) bool {
		return watched[i].WatchedAt.After(*watched[j].WatchedAt)
	})

	var groups []MonthGroup
	index := make(map[string]int)
	for _, f := range watched {
		ts := f.WatchedAt.In(loc)
		key := strconv.Itoa(ts.Year()) + "-" + strconv.Itoa(int(ts.Month()))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{
				Key:   key,
				Month: time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, loc),
			})
		}
		groups[i].Files = append(groups[i].Files, f)
	}
	return groups
}

// Kind is a display classification derived from a file extension.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDoc     Kind = "docx"
	KindSheet   Kind = "xlsx"
	KindSlides  Kind = "pptx"
	KindText    Kind = "txt"
	KindVideo   Kind = "mp4"
	KindMP3     Kind = "mp3"
	KindWAV     Kind = "wav"
	KindZip     Kind = "zip"
	KindRar     Kind = "rar"
	KindJPG     Kind = "jpg"
	KindJPEG    Kind = "jpeg"
	KindPNG     Kind = "png"
	KindGIF     Kind = "gif"
	KindUnknown Kind = "unknown"
)

var kindByExt = map[string]Kind{
	"pdf":  KindPDF,
	"doc":  KindDoc,
	"docx": KindDoc,
	"xls":  KindSheet,
	"xlsx": KindSheet,
	"ppt":  KindSlides,
	"pptx": KindSlides,
	"txt":  KindText,
	"mp4":  KindVideo,
	"mov":  KindVideo,
	"avi":  KindVideo,
	"mp3":  KindMP3,
	"wav":  KindWAV,
	"zip":  KindZip,
	"rar":  KindRar,
	"jpg":  KindJPG,
	"jpeg": KindJPEG,
	"png":  KindPNG,
	"gif":  KindGIF,
}

// KindFromName classifies a file name by its extension.
func KindFromName(name string) Kind {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return KindUnknown
	}
	if k, ok := kindByExt[strings.ToLower(name[i+1:])]; ok {
		return k
	}
	return KindUnknown
}

// Type maps a kind onto the server's file type categories.
func (k Kind) Type() nas.FileType {
	switch k {
	case KindVideo:
		return nas.TypeVideo
	case KindMP3, KindWAV:
		return nas.TypeMusic
	case KindPDF, KindDoc, KindSheet, KindSlides, KindText:
		return nas.TypeDocument
	case KindJPG, KindJPEG, KindPNG, KindGIF:
		return nas.TypeImage
	case KindZip, KindRar:
		return nas.TypeArchive
	default:
		return nas.TypeOther
	}
}

// TypeFromName is KindFromName(name).Type().
func TypeFromName(name string) nas.FileType {
	return KindFromName(name).Type()
}

// FormatCount abbreviates large counters: 1.2K, 3.4M.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// ParentFolder returns the name of the directory holding p, or "root" for a
// top-level entry.
func ParentFolder(p string) string {
	p = strings.TrimSuffix(p, "/")
	dir := path.Dir(p)
	if !strings.Contains(p, "/") || dir == "/" || dir == "." {
		return rootFolder
	}
	return path.Base(dir)
}
