// wx/grid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/math"
	"github.com/vmihailenco/msgpack/v5"
)

// GridFilenameExtension is the standard extension for atmosphere grids,
// which are msgpack-encoded Grids compressed with zstd.
const GridFilenameExtension = ".msgpack.zst"

// Grid is an Oracle backed by a regular lat-long grid of vertical
// sample stacks. Lookups return the sample at the nearest node and level.
type Grid struct {
	Origin  math.Point2LL `msgpack:"origin"`  // south-west node
	Spacing float32       `msgpack:"spacing"` // degrees between nodes
	NLon    int           `msgpack:"nlon"`
	NLat    int           `msgpack:"nlat"`
	Levels  []float32     `msgpack:"levels"` // feet MSL, ascending
	Time    time.Time     `msgpack:"time"`
	// Row-major by latitude: Nodes[lat*NLon+lon].
	Nodes []GridNode `msgpack:"nodes"`

	cache *lru.Cache[gridKey, Sample]
}

type GridNode struct {
	SurfacePressure float32     `msgpack:"psfc"`
	Levels          []GridLevel `msgpack:"levels"`
}

type GridLevel struct {
	Wind        Wind    `msgpack:"wind"`
	Temperature float32 `msgpack:"temp"`
}

type gridKey struct {
	lon, lat, level int
}

const gridCacheSize = 4096

func (g *Grid) init() error {
	if g.Spacing <= 0 {
		return fmt.Errorf("grid spacing %f: %w", g.Spacing, ErrInvalidGrid)
	}
	if g.NLon <= 0 || g.NLat <= 0 || len(g.Nodes) != g.NLon*g.NLat {
		return fmt.Errorf("%d nodes for %dx%d grid: %w", len(g.Nodes), g.NLon, g.NLat, ErrInvalidGrid)
	}
	if len(g.Levels) == 0 || !slices.IsSorted(g.Levels) {
		return fmt.Errorf("levels must be ascending: %w", ErrInvalidGrid)
	}
	for i, n := range g.Nodes {
		if len(n.Levels) != len(g.Levels) {
			return fmt.Errorf("node %d has %d levels, expected %d: %w", i, len(n.Levels), len(g.Levels), ErrInvalidGrid)
		}
	}

	var err error
	g.cache, err = lru.New[gridKey, Sample](gridCacheSize)
	return err
}

// NewGrid returns a Grid after checking that the given layout is
// consistent.
func NewGrid(origin math.Point2LL, spacing float32, nlon, nlat int, levels []float32, nodes []GridNode) (*Grid, error) {
	g := &Grid{Origin: origin, Spacing: spacing, NLon: nlon, NLat: nlat, Levels: levels, Nodes: nodes}
	if err := g.init(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) nearestLevel(alt float32) int {
	idx, _ := slices.BinarySearch(g.Levels, alt)
	if idx == len(g.Levels) {
		return idx - 1
	} else if idx > 0 && alt-g.Levels[idx-1] < g.Levels[idx]-alt {
		return idx - 1
	}
	return idx
}

func (g *Grid) Lookup(p math.Point2LL, alt float32, t time.Time) (Sample, bool) {
	ix := int(math.Round((p[0] - g.Origin[0]) / g.Spacing))
	iy := int(math.Round((p[1] - g.Origin[1]) / g.Spacing))
	if ix < 0 || ix >= g.NLon || iy < 0 || iy >= g.NLat {
		return StandardSample(alt), false
	}

	key := gridKey{lon: ix, lat: iy, level: g.nearestLevel(alt)}
	s, ok := g.cache.Get(key)
	if !ok {
		node := g.Nodes[iy*g.NLon+ix]
		lvl := node.Levels[key.level]
		s = Sample{
			Wind:            lvl.Wind,
			Temperature:     lvl.Temperature,
			SurfacePressure: node.SurfacePressure,
		}
		g.cache.Add(key, s)
	}

	// The pressure varies continuously with altitude even though the rest
	// of the sample is quantized.
	s.Pressure = av.StaticPressure(alt, s.SurfacePressure)
	return s, true
}

// CacheLen returns the number of node samples currently cached.
func (g *Grid) CacheLen() int {
	return g.cache.Len()
}

// LoadGrid decodes a zstd-compressed msgpack grid.
func LoadGrid(r io.Reader) (*Grid, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var g Grid
	if err := msgpack.NewDecoder(zr).Decode(&g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrid, err)
	}
	if err := g.init(); err != nil {
		return nil, err
	}
	return &g, nil
}

func OpenGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := LoadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Encode writes the grid in the format read by LoadGrid.
func (g *Grid) Encode(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(g); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
