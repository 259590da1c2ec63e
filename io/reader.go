package io

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"io"
	"os"
	"strings"
)

type OsmNodeHandler interface {
	Name() string
	Init() error
	HandleNode(node *osm.Node) error
	Done() error
}

func IsOsmFile(filename string) bool {
	return strings.HasSuffix(filename, ".osm") || strings.HasSuffix(filename, ".pbf")
}

// ReadOsmFile passes all nodes of the given .osm or .osm.pbf file to the handler. Ways and relations are skipped.
func ReadOsmFile(filename string, handler OsmNodeHandler) error {
	if !IsOsmFile(filename) {
		return errors.Errorf("Input file %s must be an .osm or .pbf file", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to open OSM input file %s", filename)
	}
	defer f.Close()

	var scanner osm.Scanner
	if strings.HasSuffix(filename, ".osm") {
		scanner = osmxml.New(context.Background(), f)
	} else {
		scanner = osmpbf.New(context.Background(), f, 1)
	}

	return readOsm(scanner, handler)
}

// ReadOsmXml works like ReadOsmFile for OSM-XML data of any reader.
func ReadOsmXml(reader io.Reader, handler OsmNodeHandler) error {
	return readOsm(osmxml.New(context.Background(), reader), handler)
}

func readOsm(scanner osm.Scanner, handler OsmNodeHandler) error {
	err := handler.Init()
	if err != nil {
		return errors.Wrapf(err, "Initializing OSM data handler '%s' failed", handler.Name())
	}

	sigolo.Debugf("Start processing nodes with handler '%s'", handler.Name())
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}

		err = handler.HandleNode(node)
		if err != nil {
			_ = scanner.Close()
			return errors.Wrapf(err, "Handling node %d using handler '%s' failed", node.ID, handler.Name())
		}
	}

	err = scanner.Err()
	if err != nil {
		_ = scanner.Close()
		return errors.Wrapf(err, "Unable to read OSM data")
	}

	err = handler.Done()
	if err != nil {
		return errors.Wrapf(err, "Calling done function on handler '%s' failed", handler.Name())
	}

	err = scanner.Close()
	if err != nil {
		return errors.Wrapf(err, "Unable to close OSM scanner")
	}

	return nil
}
