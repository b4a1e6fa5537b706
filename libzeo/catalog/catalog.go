package catalog

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

/***

Catalog database format:

	gCatalogStateKey                                  => CatalogState (varints)

	kSubstituted, shell (u32), center (u32)           => Framework (substituted)
	kTerminated,  shell (u32), center (u32), bridging => Framework (substituted + terminator)

Big-endian fixed-width indices keep the badger key order equal to (shell, center, bridging) order,
so a prefix scan on kTerminated + shell visits one shell's sites in ascending center order.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kSubstituted byte = 0x10
	kTerminated  byte = 0x11

	kMajorVers = 2026
	kMinorVers = 1
)

// Opts specifies params for opening a site Catalog
type Opts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

// OnSiteHit receives selected snapshots; ownership of each SiteResult travels through the channel.
type OnSiteHit chan<- *zeo.SiteResult

// Selector bounds which shells a Select visits (inclusive).
type Selector struct {
	MinShell        int
	MaxShell        int  // negative denotes no upper bound
	LoadSubstituted bool // also load each site's substituted snapshot
}

// SelectAll visits every stored site.
var SelectAll = Selector{
	MaxShell: -1,
}

type catalogState struct {
	MajorVers  uint64
	MinorVers  uint64
	NumSites   uint64
	NumCenters uint64
}

func (state *catalogState) Marshal() []byte {
	buf := proto.NewBuffer(nil)
	buf.EncodeVarint(state.MajorVers)
	buf.EncodeVarint(state.MinorVers)
	buf.EncodeVarint(state.NumSites)
	buf.EncodeVarint(state.NumCenters)
	return buf.Bytes()
}

func (state *catalogState) Unmarshal(val []byte) error {
	dec := decoder{
		buf: proto.NewBuffer(val),
	}
	state.MajorVers = dec.varint()
	state.MinorVers = dec.varint()
	state.NumSites = dec.varint()
	state.NumCenters = dec.varint()
	return dec.err
}

// Catalog is a badger store of generated site snapshots, usable as a zeo.SiteMaterializer.
type Catalog struct {
	db       *badger.DB
	readOnly bool

	mu         sync.Mutex
	state      catalogState
	stateDirty bool
}

// OpenCatalog opens (or creates) a site catalog.
func OpenCatalog(opts Opts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(zeo.ErrBadConfig, "DbPathName must be specified for a read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Errorf("catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.db.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *Catalog) flushState() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and closes the db.
func (cat *Catalog) Close() error {
	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if cerr := cat.db.Close(); err == nil {
		err = cerr
	}
	cat.db = nil
	return err
}

// NumSites returns the number of terminated snapshots stored.
func (cat *Catalog) NumSites() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumSites)
}

// NumCenters returns the number of substituted snapshots stored.
func (cat *Catalog) NumCenters() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumCenters)
}

func appendIndex(key []byte, idx int) []byte {
	return binary.BigEndian.AppendUint32(key, uint32(idx))
}

func formSubstitutedKey(key []byte, shell, center int) []byte {
	key = append(key, kSubstituted)
	key = appendIndex(key, shell)
	key = appendIndex(key, center)
	return key
}

func formTerminatedKey(key []byte, site zeo.SiteKey) []byte {
	key = append(key, kTerminated)
	key = appendIndex(key, site.Shell)
	key = appendIndex(key, site.Center)
	key = appendIndex(key, site.Bridging)
	return key
}

func parseTerminatedKey(key []byte) (zeo.SiteKey, bool) {
	if len(key) != 13 || key[0] != kTerminated {
		return zeo.SiteKey{}, false
	}
	return zeo.SiteKey{
		Shell:    int(binary.BigEndian.Uint32(key[1:5])),
		Center:   int(binary.BigEndian.Uint32(key[5:9])),
		Bridging: int(binary.BigEndian.Uint32(key[9:13])),
	}, true
}

// Materialize stores both snapshots of a site.  The substituted snapshot is stored once per center.
func (cat *Catalog) Materialize(key zeo.SiteKey, substituted, terminated *zeo.Framework) error {
	if cat.readOnly {
		return errors.Wrap(zeo.ErrBadConfig, "catalog is read-only")
	}
	if substituted == nil || terminated == nil {
		return zeo.ErrNilFramework
	}

	subKey := formSubstitutedKey(nil, key.Shell, key.Center)
	termKey := formTerminatedKey(nil, key)

	newCenter, newSite := false, false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(subKey)
		if err == badger.ErrKeyNotFound {
			if err = txn.Set(subKey, AppendFramework(nil, substituted)); err != nil {
				return err
			}
			newCenter = true
		} else if err != nil {
			return err
		}

		_, err = txn.Get(termKey)
		if err == badger.ErrKeyNotFound {
			newSite = true
		} else if err != nil {
			return err
		}
		return txn.Set(termKey, AppendFramework(nil, terminated))
	})
	if err != nil {
		return errors.Wrapf(err, "storing site %d/%d/%d", key.Shell, key.Center, key.Bridging)
	}

	if newCenter || newSite {
		cat.mu.Lock()
		if newCenter {
			cat.state.NumCenters++
		}
		if newSite {
			cat.state.NumSites++
		}
		cat.stateDirty = true
		cat.mu.Unlock()
	}
	return nil
}

// Get loads the snapshots stored for the given site.
func (cat *Catalog) Get(key zeo.SiteKey) (*zeo.SiteResult, error) {
	res := &zeo.SiteResult{
		Key: key,
	}
	err := cat.db.View(func(txn *badger.Txn) error {
		var err error
		res.Terminated, err = getFramework(txn, formTerminatedKey(nil, key))
		if err != nil {
			return err
		}
		res.Substituted, err = getFramework(txn, formSubstitutedKey(nil, key.Shell, key.Center))
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func getFramework(txn *badger.Txn, key []byte) (*zeo.Framework, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	var fw *zeo.Framework
	err = item.Value(func(val []byte) error {
		fw, err = DecodeFramework(val)
		return err
	})
	return fw, err
}

// Select sends every stored site within the selector's shell range to onHit, in (shell, center, bridging) order.
// The caller owns onHit and closes it after Select returns.
func (cat *Catalog) Select(sel Selector, onHit OnSiteHit) error {
	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         []byte{kTerminated},
	})
	defer it.Close()

	seekKey := appendIndex([]byte{kTerminated}, sel.MinShell)

	for it.Seek(seekKey); it.Valid(); it.Next() {
		item := it.Item()
		key, ok := parseTerminatedKey(item.Key())
		if !ok {
			return errors.Wrapf(zeo.ErrBadEncoding, "unexpected catalog key %x", item.Key())
		}
		if sel.MaxShell >= 0 && key.Shell > sel.MaxShell {
			break
		}

		res := &zeo.SiteResult{
			Key: key,
		}
		err := item.Value(func(val []byte) error {
			var err error
			res.Terminated, err = DecodeFramework(val)
			return err
		})
		if err == nil && sel.LoadSubstituted {
			res.Substituted, err = getFramework(txn, formSubstitutedKey(nil, key.Shell, key.Center))
		}
		if err != nil {
			return err
		}
		onHit <- res
	}
	return nil
}

// Shells returns the distinct shell indices present, ascending.
func (cat *Catalog) Shells() ([]int, error) {
	var shells []int
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         []byte{kTerminated},
		})
		defer it.Close()

		var prefix []byte
		for it.Rewind(); it.Valid(); {
			key, ok := parseTerminatedKey(it.Item().Key())
			if !ok {
				return errors.Wrapf(zeo.ErrBadEncoding, "unexpected catalog key %x", it.Item().Key())
			}
			shells = append(shells, key.Shell)

			// Skip to the first key of the next shell
			prefix = appendIndex(append(prefix[:0], kTerminated), key.Shell+1)
			it.Seek(prefix)
		}
		return nil
	})
	return shells, err
}
