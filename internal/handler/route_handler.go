package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/seoul-transit/service-route-search/internal/application"
	"github.com/seoul-transit/service-route-search/internal/domain/route"
	"github.com/seoul-transit/service-route-search/internal/domain/station"
	"github.com/seoul-transit/service-route-search/internal/response"
)

//go:embed templates/*.html
var templatesFS embed.FS

// maxIdentifierLength caps station identifiers accepted on the query string.
const maxIdentifierLength = 200

// SearchRouteRequest holds the query parameters of GET /search_route.
type SearchRouteRequest struct {
	StartStation     string `form:"start_station" binding:"max=200"`
	EndStation       string `form:"end_station" binding:"max=200"`
	StartStationName string `form:"start_station_name" binding:"max=200"`
	EndStationName   string `form:"end_station_name" binding:"max=200"`
}

// Query selects the lookup mode. Names win whenever either name parameter is set.
func (r SearchRouteRequest) Query() station.Query {
	if r.StartStationName != "" || r.EndStationName != "" {
		return station.NewQuery(r.StartStationName, r.EndStationName, station.ModeName)
	}
	return station.NewQuery(r.StartStation, r.EndStation, station.ModeID)
}

// RouteHandler handles the search pages.
type RouteHandler struct {
	service             *application.RouteSearchService
	stations            station.Repository
	geocodingConfigured bool
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *application.RouteSearchService, stations station.Repository, geocodingConfigured bool) *RouteHandler {
	return &RouteHandler{
		service:             service,
		stations:            stations,
		geocodingConfigured: geocodingConfigured,
	}
}

// LoadTemplates installs the embedded page templates on the engine.
func LoadTemplates(engine *gin.Engine) error {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"km":      func(m int64) string { return fmt.Sprintf("%.1f", float64(m)/1000) },
		"minutes": func(d time.Duration) string { return fmt.Sprintf("%.0f", d.Minutes()) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)
	return nil
}

// RegisterRoutes registers the page routes on the given router group.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.GET("/search_route", h.SearchRoute)
}

// Index handles GET /.
func (h *RouteHandler) Index(c *gin.Context) {
	stations, err := h.stations.All(c.Request.Context())
	if err != nil {
		response.Error(c, route.NewUnexpectedError(err))
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Stations":            stations,
		"GeocodingConfigured": h.geocodingConfigured,
	})
}

// SearchRoute handles GET /search_route.
//
// Query params, one pair required:
//   - start_station_name, end_station_name: free-text names, geocoded
//   - start_station, end_station: static station IDs (legacy)
//
// Response 200: HTML page with the first route.
// Response 4xx/5xx: plain-text message.
func (h *RouteHandler) SearchRoute(c *gin.Context) {
	var req SearchRouteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		msg := "invalid query parameters"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg = fmt.Sprintf("station identifiers must be at most %d characters", maxIdentifierLength)
		}
		response.Error(c, route.NewValidationError(msg))
		return
	}

	result, err := h.service.Search(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.HTML(http.StatusOK, "result.html", gin.H{
		"Start":           result.Query.Start,
		"End":             result.Query.End,
		"StartCoordinate": result.Start.String(),
		"EndCoordinate":   result.End.String(),
		"Option":          result.Route.Option,
		"Summary":         result.Route.Summary(),
		"RouteJSON":       prettyJSON(result.Route.Raw),
		"RequestID":       result.RequestID,
	})
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
