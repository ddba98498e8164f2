package http

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

const maxImageBytes = 8 << 20

// createSurveyRequest is the POST /v1/surveys payload.
type createSurveyRequest struct {
	Coordinates []domain.Coordinate `json:"coordinates"`
	Formation   string              `json:"formation"`
}

// CreateSurveyHandler records a new survey traverse.
func CreateSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSurveyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Coordinates) == 0 {
			return errBadRequest(c, "at least one coordinate is required")
		}
		for i, coord := range req.Coordinates {
			if coord.Lat < -90 || coord.Lat > 90 || coord.Lon < -180 || coord.Lon > 180 {
				return errUnprocessable(c, "coordinate "+strconv.Itoa(i)+" out of range")
			}
		}

		survey, err := deps.Surveys.Create(c.Context(), req.Coordinates, req.Formation)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(survey)
	}
}

// ListSurveysHandler returns all surveys, paginated.
func ListSurveysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		surveys, err := deps.Surveys.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(surveys)
		if offset >= total {
			surveys = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			surveys = surveys[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: surveys, Pagination: pg})
	}
}

// GetSurveyHandler returns a single survey by ID.
func GetSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "survey id is required")
		}
		survey, err := deps.Surveys.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "survey not found")
		}
		return c.JSON(survey)
	}
}

// NearbySurveysHandler returns surveys starting within a radius of a point.
func NearbySurveysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 5000)

		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}

		surveys, err := deps.Surveys.FindNearby(c.Context(), lat, lon, radius)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{"surveys": surveys, "count": len(surveys)})
	}
}

// SurveyStatsHandler returns derived traverse statistics for a survey.
func SurveyStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "survey id is required")
		}
		stats, err := deps.Surveys.Stats(c.Context(), id)
		if err != nil {
			return errNotFound(c, "survey not found")
		}
		return c.JSON(stats)
	}
}

// addDescriptionRequest is the POST /v1/surveys/:id/descriptions payload.
type addDescriptionRequest struct {
	Text          string `json:"text"`
	LocationIndex int    `json:"location_index"`
}

// AddDescriptionHandler appends a field description to a survey and returns
// the inferred type with its knowledge-base details, when a rule matched.
func AddDescriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "survey id is required")
		}

		var req addDescriptionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Text) == "" {
			return errBadRequest(c, "text is required")
		}

		details, err := deps.Surveys.AddDescription(c.Context(), id, req.Text, req.LocationIndex)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "survey not found")
			}
			if strings.Contains(err.Error(), "out of range") {
				return errUnprocessable(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		resp := fiber.Map{"survey_id": id, "location_index": req.LocationIndex}
		if details != nil {
			resp["inferred"] = details
		}
		return c.Status(201).JSON(resp)
	}
}

// GetProcessedMapHandler derives and returns the structured map model.
func GetProcessedMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "survey id is required")
		}
		m, err := deps.Maps.ProcessedMap(c.Context(), id)
		if err != nil {
			return errNotFound(c, "survey not found")
		}
		return c.JSON(m)
	}
}

// GenerateMapHandler derives the map, renders it to a PNG artifact, and
// returns the derived model with the artifact path.
func GenerateMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "survey id is required")
		}
		m, path, err := deps.Maps.Generate(c.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "survey not found")
			}
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(fiber.Map{
			"survey_id": id,
			"path":      path,
			"map":       m,
		})
	}
}

// GetMineralHandler looks up a mineral by name.
func GetMineralHandler(deps *Dependencies) fiber.Handler {
	return recordLookupHandler(deps, domain.KindMineral)
}

// GetRockHandler looks up a rock by name.
func GetRockHandler(deps *Dependencies) fiber.Handler {
	return recordLookupHandler(deps, domain.KindRock)
}

func recordLookupHandler(deps *Dependencies, kind domain.RecordKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return errBadRequest(c, "name is required")
		}

		var (
			rec domain.Record
			err error
		)
		if kind == domain.KindMineral {
			rec, err = deps.Knowledge.GetMineral(c.Context(), name)
		} else {
			rec, err = deps.Knowledge.GetRock(c.Context(), name)
		}
		if err != nil {
			return errNotFound(c, string(kind)+" not found")
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(domain.TypeDetails{Kind: kind, Data: rec})
	}
}

// TypeDetailsHandler resolves a name against both collections, minerals first.
func TypeDetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return errBadRequest(c, "name is required")
		}
		details := deps.Knowledge.Details(c.Context(), name)
		return c.JSON(details)
	}
}

// SearchKnowledgeHandler searches records by property substring.
// GET /v1/knowledge/search?property=hardness&value=7&kind=mineral
func SearchKnowledgeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		property := c.Query("property")
		value := c.Query("value")
		kind := domain.RecordKind(c.Query("kind", string(domain.KindMineral)))

		if property == "" || value == "" {
			return errBadRequest(c, "property and value are required")
		}
		if kind != domain.KindMineral && kind != domain.KindRock {
			return errBadRequest(c, "kind must be mineral or rock")
		}

		results, err := deps.Knowledge.SearchByProperty(c.Context(), property, value, kind)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"results": results, "count": len(results)})
	}
}

// AddMineralHandler appends a mineral record to the knowledge base.
func AddMineralHandler(deps *Dependencies) fiber.Handler {
	return addRecordHandler(deps, domain.KindMineral)
}

// AddRockHandler appends a rock record to the knowledge base.
func AddRockHandler(deps *Dependencies) fiber.Handler {
	return addRecordHandler(deps, domain.KindRock)
}

func addRecordHandler(deps *Dependencies, kind domain.RecordKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rec domain.Record
		if err := c.BodyParser(&rec); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if rec.Name() == "" {
			return errBadRequest(c, "record must have a name")
		}

		var err error
		if kind == domain.KindMineral {
			err = deps.Knowledge.AddMineral(c.Context(), rec)
		} else {
			err = deps.Knowledge.AddRock(c.Context(), rec)
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(domain.TypeDetails{Kind: kind, Data: rec})
	}
}

// IdentifyHandler classifies an uploaded sample image against the knowledge
// base. Accepts multipart form field "image" or a raw image body.
func IdentifyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		image, err := imageFromRequest(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		details, err := deps.Identify.Identify(c.Context(), image)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "no matching record for sample")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(details)
	}
}

func imageFromRequest(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > maxImageBytes {
			return nil, errors.New("image too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImageBytes))
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, errors.New("image is required")
	}
	if len(body) > maxImageBytes {
		return nil, errors.New("image too large")
	}
	return body, nil
}

// UpdateKnowledgeHandler triggers a synchronous knowledge-base refresh from
// the configured online sources.
func UpdateKnowledgeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Updater == nil {
			return errInternal(c, "updater not configured")
		}
		result, err := deps.Updater.Update(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(result)
	}
}
