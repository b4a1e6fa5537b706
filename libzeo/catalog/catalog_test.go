package catalog

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/zeosite/libzeo/fixture"
	"github.com/fine-structures/zeosite/libzeo/mutate"
	"github.com/fine-structures/zeosite/libzeo/periodic"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundtrip(t *testing.T) {
	fw := fixture.Diamond(fixture.CHALike)
	fw.Cell.PBC[2] = false

	enc := AppendFramework(nil, fw)
	out, err := DecodeFramework(enc)
	require.NoError(t, err)
	assert.Equal(t, fw, out)

	// Appending to a non-empty buffer leaves the prefix alone
	prefixed := AppendFramework([]byte{0xAA}, fw)
	assert.Equal(t, byte(0xAA), prefixed[0])
	assert.Equal(t, enc, prefixed[1:])
}

func TestCodecRejectsCorrupt(t *testing.T) {
	enc := AppendFramework(nil, fixture.Ring(4))

	_, err := DecodeFramework(enc[:len(enc)-3])
	assert.True(t, errors.Is(err, zeo.ErrBadEncoding))

	_, err = DecodeFramework(nil)
	assert.True(t, errors.Is(err, zeo.ErrBadEncoding))

	bad := append([]byte{}, enc...)
	bad[0] = 9
	_, err = DecodeFramework(bad)
	assert.True(t, errors.Is(err, zeo.ErrBadEncoding))
}

func ringSites(t *testing.T) (fw *zeo.Framework, m *mutate.Mutator) {
	fw = fixture.Ring(8)
	m = mutate.NewMutator(periodic.NewFinder(zeo.DefaultCutoff))
	m.BridgingDegree = 2
	return fw, m
}

func TestMaterializeAndGet(t *testing.T) {
	fw, m := ringSites(t)

	cat, err := OpenCatalog(Opts{})
	require.NoError(t, err)
	defer cat.Close()

	key := zeo.SiteKey{Shell: 1, Center: 3, Bridging: 10}
	sub, term, err := m.MutateSite(fw, key.Center, key.Bridging)
	require.NoError(t, err)

	require.NoError(t, cat.Materialize(key, sub, term))
	require.NoError(t, cat.Materialize(key, sub, term))
	assert.EqualValues(t, 1, cat.NumSites())
	assert.EqualValues(t, 1, cat.NumCenters())

	res, err := cat.Get(key)
	require.NoError(t, err)
	assert.Equal(t, key, res.Key)
	assert.Equal(t, sub, res.Substituted)
	assert.Equal(t, term, res.Terminated)

	_, err = cat.Get(zeo.SiteKey{Shell: 1, Center: 3, Bridging: 11})
	assert.Equal(t, badger.ErrKeyNotFound, err)

	assert.True(t, errors.Is(cat.Materialize(key, nil, term), zeo.ErrNilFramework))
}

func TestSelectOrder(t *testing.T) {
	fw, m := ringSites(t)

	cat, err := OpenCatalog(Opts{})
	require.NoError(t, err)
	defer cat.Close()

	// Stored out of order on purpose
	keys := []zeo.SiteKey{
		{Shell: 2, Center: 6, Bridging: 13},
		{Shell: 0, Center: 1, Bridging: 9},
		{Shell: 2, Center: 2, Bridging: 10},
		{Shell: 0, Center: 1, Bridging: 8},
		{Shell: 1, Center: 300, Bridging: 9},
	}
	for _, key := range keys {
		center := key.Center % 8
		sub, term, err := m.MutateSite(fw, center, 8+center)
		require.NoError(t, err)
		require.NoError(t, cat.Materialize(key, sub, term))
	}
	assert.EqualValues(t, 5, cat.NumSites())
	assert.EqualValues(t, 4, cat.NumCenters())

	collect := func(sel Selector) []zeo.SiteKey {
		var got []zeo.SiteKey
		onHit := make(chan *zeo.SiteResult)
		go func() {
			assert.NoError(t, cat.Select(sel, onHit))
			close(onHit)
		}()
		for res := range onHit {
			assert.NotNil(t, res.Terminated)
			assert.Equal(t, sel.LoadSubstituted, res.Substituted != nil)
			got = append(got, res.Key)
		}
		return got
	}

	assert.Equal(t, []zeo.SiteKey{
		{Shell: 0, Center: 1, Bridging: 8},
		{Shell: 0, Center: 1, Bridging: 9},
		{Shell: 1, Center: 300, Bridging: 9},
		{Shell: 2, Center: 2, Bridging: 10},
		{Shell: 2, Center: 6, Bridging: 13},
	}, collect(SelectAll))

	assert.Equal(t, []zeo.SiteKey{
		{Shell: 1, Center: 300, Bridging: 9},
	}, collect(Selector{MinShell: 1, MaxShell: 1, LoadSubstituted: true}))

	shells, err := cat.Shells()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, shells)
}

func TestReopen(t *testing.T) {
	fw, m := ringSites(t)
	dbPath := filepath.Join(t.TempDir(), "sites")

	cat, err := OpenCatalog(Opts{DbPathName: dbPath})
	require.NoError(t, err)

	key := zeo.SiteKey{Shell: 0, Center: 1, Bridging: 8}
	sub, term, err := m.MutateSite(fw, key.Center, key.Bridging)
	require.NoError(t, err)
	require.NoError(t, cat.Materialize(key, sub, term))
	require.NoError(t, cat.Close())

	cat, err = OpenCatalog(Opts{DbPathName: dbPath, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()

	assert.EqualValues(t, 1, cat.NumSites())
	res, err := cat.Get(key)
	require.NoError(t, err)
	assert.Equal(t, term, res.Terminated)

	err = cat.Materialize(key, sub, term)
	assert.True(t, errors.Is(err, zeo.ErrBadConfig))
}

func TestReadOnlyNeedsPath(t *testing.T) {
	_, err := OpenCatalog(Opts{ReadOnly: true})
	assert.True(t, errors.Is(err, zeo.ErrBadConfig))
}
