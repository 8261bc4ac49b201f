package library

import (
	"strings"

	"github.com/five82/stash/internal/nas"
)

// RootPath is the path of the tree root.
const RootPath = "/"

// Folder is one directory of the tree built from file paths. Folders and
// files keep the order in which they were first seen.
type Folder struct {
	Name    string
	Path    string // "/" for the root, "/a/b" below it
	Depth   int
	Folders []*Folder
	Files   []nas.File

	index map[string]*Folder
}

// Total counts the files in f and every folder below it.
func (f *Folder) Total() int {
	n := len(f.Files)
	for _, child := range f.Folders {
		n += child.Total()
	}
	return n
}

// HasChildren reports whether the folder holds anything to expand.
func (f *Folder) HasChildren() bool {
	return len(f.Folders) > 0 || len(f.Files) > 0
}

func (f *Folder) child(name string) *Folder {
	if c, ok := f.index[name]; ok {
		return c
	}
	p := f.Path + "/" + name
	if f.Path == RootPath {
		p = RootPath + name
	}
	c := &Folder{Name: name, Path: p, Depth: f.Depth + 1, index: make(map[string]*Folder)}
	f.index[name] = c
	f.Folders = append(f.Folders, c)
	return c
}

// BuildTree groups files into folders by the directory part of Path. Empty
// segments are ignored, so "a//b.txt" and "/a/b.txt" land in the same folder
// and a bare name lands in the root.
func BuildTree(files []nas.File) *Folder {
	root := &Folder{Name: RootPath, Path: RootPath, index: make(map[string]*Folder)}
	for _, f := range files {
		var parts []string
		for _, part := range strings.Split(f.Path, "/") {
			if part != "" {
				parts = append(parts, part)
			}
		}
		node := root
		for i := 0; i < len(parts)-1; i++ {
			node = node.child(parts[i])
		}
		node.Files = append(node.Files, f)
	}
	return root
}

// TreeRow is one visible line of the tree: a folder, or a file inside an
// expanded folder. Parent is the path of the enclosing folder, empty for
// the root.
type TreeRow struct {
	Depth  int
	Parent string
	Folder *Folder
	File   *nas.File
}

// IsFolder reports whether the row is a folder.
func (r TreeRow) IsFolder() bool {
	return r.Folder != nil
}

// Flatten lists the rows visible when the folders in expanded are open.
// Inside an open folder its subfolders come first, then its files.
func Flatten(root *Folder, expanded map[string]bool) []TreeRow {
	var rows []TreeRow
	var walk func(f *Folder, parent string)
	walk = func(f *Folder, parent string) {
		rows = append(rows, TreeRow{Depth: f.Depth, Parent: parent, Folder: f})
		if !expanded[f.Path] {
			return
		}
		for _, child := range f.Folders {
			walk(child, f.Path)
		}
		for i := range f.Files {
			rows = append(rows, TreeRow{Depth: f.Depth + 1, Parent: f.Path, File: &f.Files[i]})
		}
	}
	walk(root, "")
	return rows
}
