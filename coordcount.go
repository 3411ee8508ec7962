package wdmigrate

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/mmcloughlin/geohash"
)

// coordHashChars is the geohash cell size used for occupancy: six
// characters is roughly a 1.2km x 600m cell.
const coordHashChars = 6

// CoordCount buckets parsed coordinates into geohash cells and counts them
// per globe, a cheap stand-in for the spatial loading the emitters do not
// do yet. Coordinates whose latitude or longitude is not numeric (the
// dumps contain a few) are tallied separately, not treated as errors.
type CoordCount struct {
	out        io.Writer
	globes     map[string]uint64
	cells      map[string]struct{}
	nonNumeric uint64
}

// NewCoordCount returns a CoordCount writing its summary to out.
func NewCoordCount(out io.Writer) *CoordCount {
	return &CoordCount{
		out:    out,
		globes: make(map[string]uint64),
		cells:  make(map[string]struct{}),
	}
}

// Handle implements Handler; only parsed coordinates are observed.
func (c *CoordCount) Handle(cols *Columns, v Value) error {
	coordinate, ok := v.(Coordinate)
	if !ok {
		return nil
	}
	lat, latErr := strconv.ParseFloat(coordinate.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(coordinate.Longitude, 64)
	if latErr != nil || lonErr != nil {
		c.nonNumeric++
		return nil
	}
	c.cells[geohash.EncodeWithPrecision(lat, lon, coordHashChars)] = struct{}{}
	c.globes[coordinate.Globe]++
	return nil
}

// Summary implements Handler.
func (c *CoordCount) Summary() error {
	fmt.Fprintf(c.out, "# globes: %d\n", len(c.globes))
	globes := make([]string, 0, len(c.globes))
	for globe := range c.globes {
		globes = append(globes, globe)
	}
	sort.Strings(globes)
	for _, globe := range globes {
		fmt.Fprintf(c.out, "  globe(%s): %d\n", globe, c.globes[globe])
	}
	fmt.Fprintf(c.out, "# occupied cells (geohash-%d): %d\n", coordHashChars, len(c.cells))
	if c.nonNumeric > 0 {
		fmt.Fprintf(c.out, "# non-numeric coordinates: %d\n", c.nonNumeric)
	}
	return nil
}
