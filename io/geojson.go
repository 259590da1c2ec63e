package io

import (
	"cityquad/common"
	"cityquad/index"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"os"
)

func WriteEntitiesAsGeoJsonFile(entities []index.Entity, filename string) error {
	return writeGeoJsonFile(filename, func(writer io.Writer) error {
		return WriteEntitiesAsGeoJson(entities, writer)
	})
}

func WriteRegionsAsGeoJsonFile(regions []common.Region, filename string) error {
	return writeGeoJsonFile(filename, func(writer io.Writer) error {
		return WriteRegionsAsGeoJson(regions, writer)
	})
}

func writeGeoJsonFile(filename string, write func(writer io.Writer) error) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create GeoJSON file %s", filename)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "Unable to close file handle for GeoJSON file %s", filename)
		}
	}()

	return write(file)
}

// WriteEntitiesAsGeoJson writes a feature collection with one point feature per entity. The properties contain the
// label as "name" and the integer coordinates.
func WriteEntitiesAsGeoJson(entities []index.Entity, writer io.Writer) error {
	sigolo.Debugf("Write %d entities to GeoJSON", len(entities))

	featureCollection := geojson.NewFeatureCollection()
	for _, entity := range entities {
		feature := geojson.NewFeature(entity.Position.ToOrb())
		feature.Properties["name"] = entity.Label
		feature.Properties["x"] = entity.Position.X
		feature.Properties["y"] = entity.Position.Y
		featureCollection.Append(feature)
	}

	return writeFeatureCollection(featureCollection, writer)
}

// WriteRegionsAsGeoJson writes one polygon feature per region, e.g. to visualize the structure of a tree.
func WriteRegionsAsGeoJson(regions []common.Region, writer io.Writer) error {
	sigolo.Debugf("Write %d regions to GeoJSON", len(regions))

	featureCollection := geojson.NewFeatureCollection()
	for _, region := range regions {
		feature := geojson.NewFeature(region.ToPolygon())
		feature.Properties["width"] = region.Width()
		feature.Properties["height"] = region.Height()
		featureCollection.Append(feature)
	}

	return writeFeatureCollection(featureCollection, writer)
}

func writeFeatureCollection(featureCollection *geojson.FeatureCollection, writer io.Writer) error {
	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to marshal GeoJSON feature collection")
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write GeoJSON feature collection")
	}

	return nil
}
