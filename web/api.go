package web

import (
	"cityquad/common"
	"cityquad/importing"
	"cityquad/index"
	ownIo "cityquad/io"
	"cityquad/metrics"
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type CityDto struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Name string `json:"name"`
}

type RegionDto struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

type TraceStepDto struct {
	Quadrant string    `json:"quadrant"`
	Region   RegionDto `json:"region"`
}

type InsertResponse struct {
	Inserted bool `json:"inserted"`
}

type SearchResponse struct {
	Found   bool           `json:"found"`
	City    *CityDto       `json:"city"`
	FoundIn *RegionDto     `json:"foundIn"`
	Trace   []TraceStepDto `json:"trace"`
}

type NearestResponse struct {
	// Distance is nil when there are no cities at all.
	Distance *float64  `json:"distance"`
	Cities   []CityDto `json:"cities"`
}

type RadiusResponse struct {
	Cities []CityDto `json:"cities"`
}

type DeleteResponse struct {
	Deleted bool     `json:"deleted"`
	City    *CityDto `json:"city"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// api serializes all access to the tree, which itself isn't safe for concurrent use.
type api struct {
	mutex sync.Mutex
	tree  *index.QuadTree
}

func StartServer(port string, tree *index.QuadTree) {
	r := initRouter(tree)
	sigolo.Infof("Start server on port %s", port)
	err := http.ListenAndServe(":"+port, r)
	sigolo.FatalCheck(err)
}

func initRouter(tree *index.QuadTree) *mux.Router {
	a := &api{tree: tree}
	metrics.SetEntities(tree.Len())

	r := mux.NewRouter()
	r.HandleFunc("/cities", a.insertCity).Methods(http.MethodPost)
	r.HandleFunc("/cities", a.getCities).Methods(http.MethodGet)
	r.HandleFunc("/cities", a.deleteCity).Methods(http.MethodDelete)
	r.HandleFunc("/cities/search", a.searchCity).Methods(http.MethodGet)
	r.HandleFunc("/cities/nearest", a.searchNearest).Methods(http.MethodGet)
	r.HandleFunc("/cities/radius", a.searchWithinRadius).Methods(http.MethodGet)
	r.HandleFunc("/regions", a.getRegions).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.Use(corsMiddleware)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(writer, request)
	})
}

func (a *api) insertCity(writer http.ResponseWriter, request *http.Request) {
	var city CityDto
	err := json.NewDecoder(request.Body).Decode(&city)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing city", err)
		return
	}
	if city.Name == "" {
		writeError(writer, http.StatusBadRequest, "Error parsing city", errors.New("Name must not be empty"))
		return
	}
	if len([]rune(city.Name)) > importing.MaxLabelLength {
		writeError(writer, http.StatusBadRequest, "Error parsing city", errors.Errorf("Name must not be longer than %d characters", importing.MaxLabelLength))
		return
	}

	a.mutex.Lock()
	inserted := a.tree.Insert(index.NewEntity(city.X, city.Y, city.Name))
	entityCount := a.tree.Len()
	a.mutex.Unlock()

	metrics.ObserveInsert(inserted)
	metrics.SetEntities(entityCount)
	sigolo.Debugf("Insert of city %s at (%d, %d): inserted=%t", city.Name, city.X, city.Y, inserted)

	writeJson(writer, http.StatusOK, InsertResponse{Inserted: inserted})
}

func (a *api) getCities(writer http.ResponseWriter, _ *http.Request) {
	a.mutex.Lock()
	entities := a.tree.Entities()
	a.mutex.Unlock()

	writer.Header().Set("Content-Type", "application/geo+json")
	err := ownIo.WriteEntitiesAsGeoJson(entities, writer)
	if err != nil {
		sigolo.Errorf("Error writing cities: %+v", err)
	}
}

func (a *api) getRegions(writer http.ResponseWriter, _ *http.Request) {
	a.mutex.Lock()
	regions := a.tree.Regions()
	a.mutex.Unlock()

	writer.Header().Set("Content-Type", "application/geo+json")
	err := ownIo.WriteRegionsAsGeoJson(regions, writer)
	if err != nil {
		sigolo.Errorf("Error writing regions: %+v", err)
	}
}

func (a *api) searchCity(writer http.ResponseWriter, request *http.Request) {
	point, err := parsePoint(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing point", err)
		return
	}

	startTime := time.Now()
	a.mutex.Lock()
	entity, found, trace := a.tree.SearchWithTrace(point)
	a.mutex.Unlock()
	metrics.ObserveQuery("search", durationMs(startTime))

	response := SearchResponse{Found: found, Trace: []TraceStepDto{}}
	for _, step := range trace.Steps {
		response.Trace = append(response.Trace, TraceStepDto{
			Quadrant: step.Quadrant.String(),
			Region:   toRegionDto(step.Region),
		})
	}
	if found {
		city := toCityDto(entity)
		response.City = &city
		if trace.FoundIn != nil {
			region := toRegionDto(*trace.FoundIn)
			response.FoundIn = &region
		}
	}

	writeJson(writer, http.StatusOK, response)
}

func (a *api) searchNearest(writer http.ResponseWriter, request *http.Request) {
	point, err := parsePoint(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing point", err)
		return
	}

	startTime := time.Now()
	a.mutex.Lock()
	entities, distance := a.tree.SearchNearest(point)
	a.mutex.Unlock()
	metrics.ObserveQuery("nearest", durationMs(startTime))

	response := NearestResponse{Cities: toCityDtos(entities)}
	if len(entities) > 0 {
		response.Distance = &distance
	}

	writeJson(writer, http.StatusOK, response)
}

func (a *api) searchWithinRadius(writer http.ResponseWriter, request *http.Request) {
	point, err := parsePoint(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing point", err)
		return
	}

	radius, err := strconv.ParseFloat(request.URL.Query().Get("r"), 64)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing radius", errors.Wrap(err, "Parameter 'r' must be a number"))
		return
	}

	startTime := time.Now()
	a.mutex.Lock()
	entities := a.tree.SearchWithinRadius(point, radius)
	a.mutex.Unlock()
	metrics.ObserveQuery("radius", durationMs(startTime))

	writeJson(writer, http.StatusOK, RadiusResponse{Cities: toCityDtos(entities)})
}

func (a *api) deleteCity(writer http.ResponseWriter, request *http.Request) {
	point, err := parsePoint(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error parsing point", err)
		return
	}

	a.mutex.Lock()
	entity, deleted := a.tree.Delete(point)
	entityCount := a.tree.Len()
	a.mutex.Unlock()

	metrics.ObserveDelete(deleted)
	metrics.SetEntities(entityCount)

	response := DeleteResponse{Deleted: deleted}
	if deleted {
		city := toCityDto(entity)
		response.City = &city
	}

	writeJson(writer, http.StatusOK, response)
}

func parsePoint(request *http.Request) (common.Point, error) {
	query := request.URL.Query()

	x, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		return common.Point{}, errors.Wrap(err, "Parameter 'x' must be an integer")
	}

	y, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		return common.Point{}, errors.Wrap(err, "Parameter 'y' must be an integer")
	}

	return common.Point{X: x, Y: y}, nil
}

func toCityDto(entity index.Entity) CityDto {
	return CityDto{X: entity.Position.X, Y: entity.Position.Y, Name: entity.Label}
}

func toCityDtos(entities []index.Entity) []CityDto {
	cities := make([]CityDto, 0, len(entities))
	for _, entity := range entities {
		cities = append(cities, toCityDto(entity))
	}
	return cities
}

func toRegionDto(region common.Region) RegionDto {
	return RegionDto{Left: region.Left(), Top: region.Top(), Right: region.Right(), Bottom: region.Bottom()}
}

func durationMs(startTime time.Time) float64 {
	return float64(time.Since(startTime).Microseconds()) / 1000
}

func writeJson(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	err := json.NewEncoder(writer).Encode(value)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}

func writeError(writer http.ResponseWriter, status int, message string, err error) {
	sigolo.Errorf("%s: %+v", message, err)
	writeJson(writer, status, ErrorResponse{Error: message, Details: err.Error()})
}
