package models

import "sort"

// Directory is a node in the repository tree. Directories are created on
// demand during ingestion and never deleted: a directory that lost all its
// files still matters for reporting historical activity.
type Directory struct {
	name    string
	path    string
	parent  *Directory
	depth   int
	subdirs map[string]*Directory
	files   []*VersionedFile
}

func newRootDirectory() *Directory {
	return &Directory{subdirs: make(map[string]*Directory)}
}

// Name returns the directory's own name, empty for the root.
func (d *Directory) Name() string { return d.name }

// Path returns the slash-joined path from the root, with a trailing slash
// for every directory except the root (whose path is empty).
func (d *Directory) Path() string { return d.path }

// Parent returns the parent directory, nil for the root.
func (d *Directory) Parent() *Directory { return d.parent }

// Depth is 0 at the root and parent.depth+1 below.
func (d *Directory) Depth() int { return d.depth }

// IsRoot reports whether this is the tree root.
func (d *Directory) IsRoot() bool { return d.parent == nil }

// CreateSubdirectory returns the child directory with the given name,
// creating it on first use. Idempotent: the same name always yields the
// same node.
func (d *Directory) CreateSubdirectory(name string) *Directory {
	if sub, ok := d.subdirs[name]; ok {
		return sub
	}
	sub := &Directory{
		name:    name,
		path:    d.path + name + "/",
		parent:  d,
		depth:   d.depth + 1,
		subdirs: make(map[string]*Directory),
	}
	d.subdirs[name] = sub
	return sub
}

// Subdirectories returns the child directories sorted by name.
func (d *Directory) Subdirectories() []*Directory {
	names := make([]string, 0, len(d.subdirs))
	for name := range d.subdirs {
		names = append(names, name)
	}
	sort.Strings(names)
	subs := make([]*Directory, len(names))
	for i, name := range names {
		subs[i] = d.subdirs[name]
	}
	return subs
}

// Files returns the files directly contained in this directory.
func (d *Directory) Files() []*VersionedFile {
	return d.files
}

func (d *Directory) addFile(f *VersionedFile) {
	d.files = append(d.files, f)
}

// CurrentLines sums the line counts of all living files in the subtree.
// Computed on demand; nothing is cached across mutation.
func (d *Directory) CurrentLines() int {
	total := 0
	for _, f := range d.files {
		if !f.IsDead() {
			total += f.CurrentLines()
		}
	}
	for _, sub := range d.subdirs {
		total += sub.CurrentLines()
	}
	return total
}

// CurrentFileCount counts the living files in the subtree.
func (d *Directory) CurrentFileCount() int {
	count := 0
	for _, f := range d.files {
		if !f.IsDead() {
			count++
		}
	}
	for _, sub := range d.subdirs {
		count += sub.CurrentFileCount()
	}
	return count
}

// IsEmptyNow reports a directory that historically held files but currently
// holds none anywhere in its subtree.
func (d *Directory) IsEmptyNow() bool {
	return d.CurrentFileCount() == 0
}

// Walk visits this directory and every descendant, parents first.
func (d *Directory) Walk(visit func(*Directory)) {
	visit(d)
	for _, sub := range d.Subdirectories() {
		sub.Walk(visit)
	}
}
