package sitetree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/fine-structures/zeosite/libzeo/xyz"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Naming sets the directory and file names of a site tree.
type Naming struct {
	ShellPrefix    string // "neighbours_" => neighbours_0, neighbours_1, ...
	CenterPrefix   string // center directory prefix
	BridgingPrefix string // bridging directory prefix
	TerminatedFile string // terminated snapshot file in each bridging directory
	Manifest       string // written to the root on Close; empty disables
}

// DefaultNaming reproduces the layout:
//
//	<root>/neighbours_<shell>/Si_<center>/Al_<center>.xyz
//	<root>/neighbours_<shell>/Si_<center>/O_<bridging>/structure.xyz
var DefaultNaming = Naming{
	ShellPrefix:    "neighbours_",
	CenterPrefix:   "Si_",
	BridgingPrefix: "O_",
	TerminatedFile: "structure.xyz",
	Manifest:       "sites.csv",
}

// Tree writes site snapshots as a directory tree of XYZ files.
// It is safe for concurrent Materialize calls.
type Tree struct {
	Root   string
	Naming Naming

	mu       sync.Mutex
	centers  map[[2]int]struct{} // (shell, center) with a written substituted file
	manifest *redblacktree.Tree  // SiteKey => relative path of the terminated file
	closed   bool
}

func siteKeyComparator(a, b interface{}) int {
	A := a.(zeo.SiteKey)
	B := b.(zeo.SiteKey)
	switch {
	case A.Shell != B.Shell:
		return A.Shell - B.Shell
	case A.Center != B.Center:
		return A.Center - B.Center
	default:
		return A.Bridging - B.Bridging
	}
}

// NewTree returns a Tree rooted at the given directory, creating it if needed.
func NewTree(root string, naming Naming) (*Tree, error) {
	if len(root) == 0 {
		return nil, errors.Wrap(zeo.ErrBadConfig, "site tree root not set")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating site tree root %q", root)
	}
	return &Tree{
		Root:     root,
		Naming:   naming,
		centers:  make(map[[2]int]struct{}),
		manifest: redblacktree.NewWith(siteKeyComparator),
	}, nil
}

// ShellDir returns the directory of the given shell, relative to the root.
func (tree *Tree) ShellDir(shell int) string {
	return fmt.Sprintf("%s%d", tree.Naming.ShellPrefix, shell)
}

// CenterDir returns the directory of a center, relative to the root.
func (tree *Tree) CenterDir(shell, center int) string {
	return filepath.Join(tree.ShellDir(shell), fmt.Sprintf("%s%d", tree.Naming.CenterPrefix, center))
}

// SitePath returns the terminated snapshot path of a site, relative to the root.
func (tree *Tree) SitePath(key zeo.SiteKey) string {
	return filepath.Join(
		tree.CenterDir(key.Shell, key.Center),
		fmt.Sprintf("%s%d", tree.Naming.BridgingPrefix, key.Bridging),
		tree.Naming.TerminatedFile,
	)
}

// SubstitutedPath returns the substituted snapshot path of a center, named after the substituted symbol.
func (tree *Tree) SubstitutedPath(shell, center int, symbol string) string {
	return filepath.Join(tree.CenterDir(shell, center), fmt.Sprintf("%s_%d.xyz", symbol, center))
}

// Materialize writes the substituted snapshot (once per center) and the terminated snapshot of a site.
func (tree *Tree) Materialize(key zeo.SiteKey, substituted, terminated *zeo.Framework) error {
	if substituted == nil || terminated == nil {
		return zeo.ErrNilFramework
	}
	center, err := substituted.Atom(key.Center)
	if err != nil {
		return errors.Wrap(err, "site tree")
	}

	sitePath := tree.SitePath(key)
	if err = os.MkdirAll(filepath.Join(tree.Root, filepath.Dir(sitePath)), 0755); err != nil {
		return err
	}

	centerKey := [2]int{key.Shell, key.Center}
	tree.mu.Lock()
	_, written := tree.centers[centerKey]
	if !written {
		tree.centers[centerKey] = struct{}{}
	}
	tree.mu.Unlock()

	if !written {
		subPath := tree.SubstitutedPath(key.Shell, key.Center, center.Symbol)
		if err = xyz.WriteFile(filepath.Join(tree.Root, subPath), substituted); err != nil {
			return errors.Wrapf(err, "writing %q", subPath)
		}
	}

	if err = xyz.WriteFile(filepath.Join(tree.Root, sitePath), terminated); err != nil {
		return errors.Wrapf(err, "writing %q", sitePath)
	}

	tree.mu.Lock()
	tree.manifest.Put(key, sitePath)
	tree.mu.Unlock()

	klog.V(2).Infof("wrote %s", sitePath)
	return nil
}

// Sites returns the materialized site keys in (shell, center, bridging) order.
func (tree *Tree) Sites() []zeo.SiteKey {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	keys := make([]zeo.SiteKey, 0, tree.manifest.Size())
	for _, key := range tree.manifest.Keys() {
		keys = append(keys, key.(zeo.SiteKey))
	}
	return keys
}

// Close writes the manifest, one "shell,center,bridging,path" line per site in key order.
func (tree *Tree) Close() error {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	if tree.closed {
		return nil
	}
	tree.closed = true

	if len(tree.Naming.Manifest) == 0 {
		return nil
	}

	buf := strings.Builder{}
	buf.WriteString("shell,center,bridging,path\n")
	it := tree.manifest.Iterator()
	for it.Next() {
		key := it.Key().(zeo.SiteKey)
		fmt.Fprintf(&buf, "%d,%d,%d,%s\n", key.Shell, key.Center, key.Bridging, filepath.ToSlash(it.Value().(string)))
	}
	return os.WriteFile(filepath.Join(tree.Root, tree.Naming.Manifest), []byte(buf.String()), 0644)
}
