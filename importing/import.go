package importing

import (
	"cityquad/index"
	ownIo "cityquad/io"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"io"
	"os"
	"time"
)

type Options struct {
	// Extent is the geographic area of OSM input that is projected onto the bounds of the tree.
	Extent orb.Bound
	// Places restricts OSM input to nodes with one of these "place" tag values. All named nodes are used when empty.
	Places []string
}

type Stats struct {
	Records  int
	Inserted int
	// Dropped counts records that are outside the bounds or that the tree rejected as duplicates.
	Dropped int
	// StoppedAt is the malformed record that ended a text import early.
	StoppedAt *MalformedRecordError
}

func (s *Stats) add(inserted bool) {
	if inserted {
		s.Inserted++
	} else {
		s.Dropped++
	}
}

// Import inserts the cities of the given file into the tree. Files ending with .osm or .pbf are read as OSM data, all
// other files as "x y label" text records.
func Import(inputFile string, tree *index.QuadTree, options Options) (*Stats, error) {
	sigolo.Infof("Start import of file %s", inputFile)
	importStartTime := time.Now()

	var stats *Stats
	var err error
	if ownIo.IsOsmFile(inputFile) {
		stats, err = importOsm(inputFile, tree, options)
	} else {
		stats, err = importTextFile(inputFile, tree)
	}
	if err != nil {
		return nil, err
	}

	sigolo.Infof("Finished import of %d cities in %s (%d dropped)", stats.Inserted, time.Since(importStartTime), stats.Dropped)
	return stats, nil
}

func importOsm(inputFile string, tree *index.QuadTree, options Options) (*Stats, error) {
	extent := options.Extent
	if extent.IsZero() {
		extent = WorldExtent
	}

	stats := &Stats{}
	err := ownIo.ReadOsmFile(inputFile, newOsmCityHandler(tree, extent, options.Places, stats))
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to import OSM file %s", inputFile)
	}
	return stats, nil
}

func importTextFile(inputFile string, tree *index.QuadTree) (*Stats, error) {
	f, err := os.Open(inputFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open input file %s", inputFile)
	}
	defer f.Close()

	stats, err := ImportText(f, tree)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to import text file %s", inputFile)
	}
	return stats, nil
}

// ImportText inserts all records of the reader into the tree. A malformed record ends the import like the end of the
// input does, the records before it stay in the tree. Only read errors are returned as error.
func ImportText(reader io.Reader, tree *index.QuadTree) (*Stats, error) {
	stats := &Stats{}

	scanner := NewRecordScanner(reader)
	for scanner.Scan() {
		record := scanner.Record()
		stats.Records++

		inserted := tree.Insert(record.ToEntity())
		if !inserted {
			sigolo.Debugf("Record %d (%s at %d, %d) has not been inserted", stats.Records, record.Label, record.X, record.Y)
		}
		stats.add(inserted)
	}

	err := scanner.Err()
	if malformedErr, ok := err.(*MalformedRecordError); ok {
		sigolo.Warnf("Stop reading input: %s", malformedErr.Error())
		stats.StoppedAt = malformedErr
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	return stats, nil
}
