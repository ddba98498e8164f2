package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat":       &graphql.Field{Type: graphql.Float},
			"lon":       &graphql.Field{Type: graphql.Float},
			"elevation": &graphql.Field{Type: graphql.Float},
		},
	})

	descriptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Description",
		Fields: graphql.Fields{
			"location_index": &graphql.Field{Type: graphql.Int},
			"text":           &graphql.Field{Type: graphql.String},
			"inferred_type":  &graphql.Field{Type: graphql.String},
		},
	})

	surveyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Survey",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"coordinates":  &graphql.Field{Type: graphql.NewList(coordinateType)},
			"descriptions": &graphql.Field{Type: graphql.NewList(descriptionType)},
			"formation":    &graphql.Field{Type: graphql.String},
			"date":         &graphql.Field{Type: graphql.String},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SurveyStats",
		Fields: graphql.Fields{
			"survey_id":       &graphql.Field{Type: graphql.String},
			"points":          &graphql.Field{Type: graphql.Int},
			"descriptions":    &graphql.Field{Type: graphql.Int},
			"traverse_meters": &graphql.Field{Type: graphql.Float},
			"min_elevation":   &graphql.Field{Type: graphql.Float},
			"max_elevation":   &graphql.Field{Type: graphql.Float},
		},
	})

	boundaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Boundary",
		Fields: graphql.Fields{
			"type":        &graphql.Field{Type: graphql.String},
			"between":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"coordinates": &graphql.Field{Type: graphql.NewList(coordinateType)},
		},
	})

	faultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StructuralFeature",
		Fields: graphql.Fields{
			"type":         &graphql.Field{Type: graphql.String},
			"coordinates":  &graphql.Field{Type: graphql.NewList(coordinateType)},
			"displacement": &graphql.Field{Type: graphql.Float},
		},
	})

	unitType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeologicalUnit",
		Fields: graphql.Fields{
			"type":        &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: graphql.NewList(coordinateType)},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProcessedMap",
		Fields: graphql.Fields{
			"survey_id":           &graphql.Field{Type: graphql.String},
			"units":               &graphql.Field{Type: graphql.NewList(unitType)},
			"boundaries":          &graphql.Field{Type: graphql.NewList(boundaryType)},
			"structural_features": &graphql.Field{Type: graphql.NewList(faultType)},
			"coordinates":         &graphql.Field{Type: graphql.NewList(coordinateType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"surveys": &graphql.Field{
				Type:        graphql.NewList(surveyType),
				Description: "List all surveys",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Surveys.List(p.Context)
				},
			},
			"survey": &graphql.Field{
				Type:        surveyType,
				Description: "Get a survey by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Surveys.GetByID(p.Context, id)
				},
			},
			"surveyStats": &graphql.Field{
				Type:        statsType,
				Description: "Derived traverse statistics for a survey",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Surveys.Stats(p.Context, id)
				},
			},
			"surveysNearby": &graphql.Field{
				Type:        graphql.NewList(surveyType),
				Description: "Surveys starting within a radius of a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					return deps.Surveys.FindNearby(p.Context, lat, lon, radius)
				},
			},
			"processedMap": &graphql.Field{
				Type:        mapType,
				Description: "Derive the structured map model for a survey",
				Args: graphql.FieldConfigArgument{
					"survey_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["survey_id"].(string)
					return deps.Maps.ProcessedMap(p.Context, id)
				},
			},
			"mineral": &graphql.Field{
				Type:        graphql.NewObject(recordObject("Mineral")),
				Description: "Look up a mineral by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name := p.Args["name"].(string)
					rec, err := deps.Knowledge.GetMineral(p.Context, name)
					if err != nil {
						return nil, err
					}
					return recordMap(rec), nil
				},
			},
			"rock": &graphql.Field{
				Type:        graphql.NewObject(recordObject("Rock")),
				Description: "Look up a rock by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name := p.Args["name"].(string)
					rec, err := deps.Knowledge.GetRock(p.Context, name)
					if err != nil {
						return nil, err
					}
					return recordMap(rec), nil
				},
			},
			"searchKnowledge": &graphql.Field{
				Type:        graphql.NewList(graphql.NewObject(recordObject("KnowledgeRecord"))),
				Description: "Search records by property substring",
				Args: graphql.FieldConfigArgument{
					"property": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"value":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"kind":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "mineral"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					property := p.Args["property"].(string)
					value := p.Args["value"].(string)
					kind := domain.RecordKind(p.Args["kind"].(string))
					recs, err := deps.Knowledge.SearchByProperty(p.Context, property, value, kind)
					if err != nil {
						return nil, err
					}
					var out []map[string]interface{}
					for _, r := range recs {
						out = append(out, recordMap(r))
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// recordObject describes a schemaless knowledge record: only the name and its
// JSON-encoded body are exposed as stable fields.
func recordObject(name string) graphql.ObjectConfig {
	return graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
			"json": &graphql.Field{Type: graphql.String},
		},
	}
}

func recordMap(rec domain.Record) map[string]interface{} {
	return map[string]interface{}{
		"name": rec.Name(),
		"json": rec.JSON(),
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
