package git

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Entry is a non-directory tree entry
type Entry struct {
	Hash plumbing.Hash
	Mode filemode.FileMode
}

// CommitTree returns the tree hash of a commit
func (r *Repository) CommitTree(sha string) (string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return "", gitErr("read commit "+sha, err)
	}
	return commit.TreeHash.String(), nil
}

// TreeEntries flattens a tree into its file entries keyed by slash-separated
// path. An empty sha is the empty tree.
func (r *Repository) TreeEntries(treeSha string) (map[string]Entry, error) {
	out := make(map[string]Entry)
	if treeSha == "" {
		return out, nil
	}
	tree, err := r.repo.TreeObject(plumbing.NewHash(treeSha))
	if err != nil {
		return nil, gitErr("read tree "+treeSha, err)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, gitErr("walk tree "+treeSha, err)
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		out[name] = Entry{Hash: entry.Hash, Mode: entry.Mode}
	}
	return out, nil
}

// ReadBlob returns the contents of a blob
func (r *Repository) ReadBlob(hash plumbing.Hash) (string, error) {
	blob, err := r.repo.BlobObject(hash)
	if err != nil {
		return "", gitErr("read blob "+hash.String(), err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return "", gitErr("read blob "+hash.String(), err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", gitErr("read blob "+hash.String(), err)
	}
	return string(data), nil
}

// ReadFile returns the contents of path in a tree and whether it exists
func (r *Repository) ReadFile(treeSha, path string) (string, bool, error) {
	if treeSha == "" {
		return "", false, nil
	}
	tree, err := r.repo.TreeObject(plumbing.NewHash(treeSha))
	if err != nil {
		return "", false, gitErr("read tree "+treeSha, err)
	}
	file, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, gitErr("read "+path, err)
	}
	content, err := file.Contents()
	if err != nil {
		return "", false, gitErr("read "+path, err)
	}
	return content, true, nil
}

// WriteTree writes a new tree derived from treeSha. A nil content removes the
// path; anything else replaces or adds it, keeping the existing file mode.
func (r *Repository) WriteTree(treeSha string, edits map[string]*string) (string, error) {
	entries, err := r.TreeEntries(treeSha)
	if err != nil {
		return "", err
	}

	for path, content := range edits {
		if content == nil {
			delete(entries, path)
			continue
		}
		hash, err := r.writeBlob(*content)
		if err != nil {
			return "", err
		}
		mode := filemode.Regular
		if existing, ok := entries[path]; ok && existing.Mode != filemode.Submodule {
			mode = existing.Mode
		}
		entries[path] = Entry{Hash: hash, Mode: mode}
	}

	root := &treeNode{}
	for path, e := range entries {
		root.insert(strings.Split(path, "/"), e)
	}
	hash, err := r.writeNode(root)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *Repository) writeBlob(content string) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, gitErr("write blob", err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, gitErr("write blob", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, gitErr("write blob", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, gitErr("write blob", err)
	}
	return hash, nil
}

type treeNode struct {
	files map[string]Entry
	dirs  map[string]*treeNode
}

func (n *treeNode) insert(parts []string, e Entry) {
	if len(parts) == 1 {
		if n.files == nil {
			n.files = make(map[string]Entry)
		}
		n.files[parts[0]] = e
		return
	}
	if n.dirs == nil {
		n.dirs = make(map[string]*treeNode)
	}
	child, ok := n.dirs[parts[0]]
	if !ok {
		child = &treeNode{}
		n.dirs[parts[0]] = child
	}
	child.insert(parts[1:], e)
}

func (r *Repository) writeNode(n *treeNode) (plumbing.Hash, error) {
	var tree object.Tree
	for name, e := range n.files {
		tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: e.Mode, Hash: e.Hash})
	}
	for name, child := range n.dirs {
		hash, err := r.writeNode(child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}

	// git orders directories as if their name ended in a slash
	sortKey := func(e object.TreeEntry) string {
		if e.Mode == filemode.Dir {
			return e.Name + "/"
		}
		return e.Name
	}
	sort.Slice(tree.Entries, func(i, j int) bool {
		return sortKey(tree.Entries[i]) < sortKey(tree.Entries[j])
	})

	obj := r.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, gitErr("encode tree", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, gitErr("write tree", err)
	}
	return hash, nil
}
