package main

import (
	"cityquad/common"
	"cityquad/importing"
	"cityquad/index"
	ownIo "cityquad/io"
	"cityquad/shell"
	"cityquad/web"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/joho/godotenv"
	"os"
	"strings"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging   string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info" env:"CITYQUAD_LOGGING"`
	Version   VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Policy    string      `help:"Leaf policy of the tree. 'unbounded' subdivides until every city has its own node, 'unit-cell' stops at cells of size 1 and keeps the first city of each cell." enum:"unbounded,unit-cell" default:"unbounded" env:"CITYQUAD_POLICY"`
	Bounds    string      `help:"Bounds of the tree as minX,minY,maxX,maxY." default:"0,0,128,128" env:"CITYQUAD_BOUNDS"`
	NoPrune   bool        `help:"Visit every node in nearest and radius queries instead of skipping subtrees that can't contain results." env:"CITYQUAD_NO_PRUNE"`
	OsmExtent string      `help:"Geographic extent of OSM input as minLon,minLat,maxLon,maxLat, which is projected onto the bounds. Defaults to the whole world." placeholder:"<extent>" env:"CITYQUAD_OSM_EXTENT"`
	Place     []string    `help:"Only import OSM nodes with one of these 'place' tag values. All named nodes are imported when not set." env:"CITYQUAD_PLACES"`
	Shell     struct {
		Input string `help:"Cities to import before the shell starts. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i"`
	} `cmd:"" help:"Starts the interactive shell." default:"1"`
	Nearest struct {
		Input string `help:"The input file. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i" required:""`
		X     int    `arg:"" help:"X coordinate of the query point."`
		Y     int    `arg:"" help:"Y coordinate of the query point."`
	} `cmd:"" help:"Prints the cities nearest to the given point."`
	Radius struct {
		Input  string  `help:"The input file. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i" required:""`
		X      int     `arg:"" help:"X coordinate of the center."`
		Y      int     `arg:"" help:"Y coordinate of the center."`
		Radius float64 `arg:"" help:"The radius, which is inclusive."`
	} `cmd:"" help:"Prints all cities within the radius around the given point."`
	Search struct {
		Input string `help:"The input file. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i" required:""`
		X     int    `arg:"" help:"X coordinate of the city."`
		Y     int    `arg:"" help:"Y coordinate of the city."`
	} `cmd:"" help:"Prints the city at exactly the given point and the quadrants the search went through."`
	Export struct {
		Input   string `help:"The input file. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i" required:""`
		Output  string `help:"The GeoJSON output file." placeholder:"<output-file>" short:"o" default:"cities.geojson"`
		Regions bool   `help:"Export the regions of all tree nodes instead of the cities."`
	} `cmd:"" help:"Writes the imported cities or the structure of the tree as GeoJSON."`
	Serve struct {
		Input string `help:"Cities to import before the server starts. Either a text file with 'x y name' records, .osm or .osm.pbf." placeholder:"<input-file>" type:"existingfile" short:"i"`
		Port  string `help:"The port of the HTTP API." short:"p" default:"8080" env:"CITYQUAD_PORT"`
	} `cmd:"" help:"Starts the HTTP API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	// A missing .env file is fine, the flags and the environment still apply.
	_ = godotenv.Load(".env")

	ctx := kong.Parse(
		&cli,
		kong.Name("cityquad"),
		kong.Description("A region quadtree of cities with exact, nearest and radius search."),
		kong.Vars{
			"version": VERSION,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	tree := createTree()
	defer tree.Destroy()

	switch ctx.Command() {
	case "shell":
		importInput(tree, cli.Shell.Input)
		err := shell.New(tree, os.Stdin, os.Stdout).Run()
		sigolo.FatalCheck(err)
	case "nearest <x> <y>":
		importInput(tree, cli.Nearest.Input)
		entities, distance := tree.SearchNearest(common.Point{X: cli.Nearest.X, Y: cli.Nearest.Y})
		shell.WriteNearest(os.Stdout, entities, distance)
	case "radius <x> <y> <radius>":
		importInput(tree, cli.Radius.Input)
		entities := tree.SearchWithinRadius(common.Point{X: cli.Radius.X, Y: cli.Radius.Y}, cli.Radius.Radius)
		shell.WriteWithinRadius(os.Stdout, entities, cli.Radius.Radius)
	case "search <x> <y>":
		importInput(tree, cli.Search.Input)
		entity, found, trace := tree.SearchWithTrace(common.Point{X: cli.Search.X, Y: cli.Search.Y})
		shell.WriteSearchTrace(os.Stdout, entity, found, trace)
	case "export":
		importInput(tree, cli.Export.Input)
		var err error
		if cli.Export.Regions {
			err = ownIo.WriteRegionsAsGeoJsonFile(tree.Regions(), cli.Export.Output)
		} else {
			err = ownIo.WriteEntitiesAsGeoJsonFile(tree.Entities(), cli.Export.Output)
		}
		sigolo.FatalCheck(err)
		sigolo.Infof("Wrote GeoJSON file %s", cli.Export.Output)
	case "serve":
		importInput(tree, cli.Serve.Input)
		web.StartServer(cli.Serve.Port, tree)
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func createTree() *index.QuadTree {
	bounds, err := common.ParseRegion(cli.Bounds)
	sigolo.FatalCheck(err)

	policy, err := index.ParseLeafPolicy(cli.Policy)
	sigolo.FatalCheck(err)

	tree, err := index.NewQuadTree(bounds, policy, !cli.NoPrune)
	sigolo.FatalCheck(err)

	return tree
}

func importInput(tree *index.QuadTree, inputFile string) {
	if inputFile == "" {
		return
	}

	options := importing.Options{Places: cli.Place}
	if cli.OsmExtent != "" {
		extent, err := importing.ParseExtent(cli.OsmExtent)
		sigolo.FatalCheck(err)
		options.Extent = extent
	}

	stats, err := importing.Import(inputFile, tree, options)
	sigolo.FatalCheck(err)

	if tree.Len() == 0 {
		sigolo.Warnf("No cities have been imported from %s", inputFile)
	}
	sigolo.Debugf("Import statistics: %d records, %d inserted, %d dropped", stats.Records, stats.Inserted, stats.Dropped)
}
