package shell

import (
	"cityquad/index"
	"fmt"
	"io"
)

func WriteNearest(w io.Writer, entities []index.Entity, distance float64) {
	if len(entities) == 0 {
		fmt.Fprintln(w, "No cities found.")
		return
	}

	fmt.Fprintf(w, "Nearest city/cities at distance %.2f:\n", distance)
	writeCities(w, entities)
}

func WriteWithinRadius(w io.Writer, entities []index.Entity, radius float64) {
	fmt.Fprintf(w, "Cities within radius %.2f:\n", radius)
	writeCities(w, entities)
}

func WriteSearchTrace(w io.Writer, entity index.Entity, found bool, trace index.SearchTrace) {
	for _, step := range trace.Steps {
		fmt.Fprintf(w, "Searching in %s quadrant with (%d, %d) as topLeft and (%d, %d) as botRight\n",
			step.Quadrant, step.Region.Left(), step.Region.Top(), step.Region.Right(), step.Region.Bottom())
	}

	if !found || trace.FoundIn == nil {
		fmt.Fprintln(w, "Not found.")
		return
	}

	fmt.Fprintf(w, "Found node in square with (%d, %d) as topLeft and (%d, %d) as botRight\n",
		trace.FoundIn.Left(), trace.FoundIn.Top(), trace.FoundIn.Right(), trace.FoundIn.Bottom())
	fmt.Fprintf(w, "City: %s\n", entity.Label)
}

func WriteDeleted(w io.Writer, entity index.Entity, deleted bool) {
	if !deleted {
		fmt.Fprintln(w, "City not found.")
		return
	}
	fmt.Fprintf(w, "Deleting city: %s\n", entity.Label)
}

func writeCities(w io.Writer, entities []index.Entity) {
	for _, entity := range entities {
		fmt.Fprintf(w, "City: %s\n", entity.Label)
	}
}
