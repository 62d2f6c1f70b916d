package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	bboxType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BBox",
		Fields: graphql.Fields{
			"min_lon": &graphql.Field{Type: graphql.Float},
			"min_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
		},
	})

	countryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Country",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
			"bbox": &graphql.Field{Type: bboxType},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TimeSeriesPoint",
		Fields: graphql.Fields{
			"date":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Float},
		},
	})

	seriesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TimeSeries",
		Fields: graphql.Fields{
			"country":     &graphql.Field{Type: graphql.String},
			"year":        &graphql.Field{Type: graphql.Int},
			"metric":      &graphql.Field{Type: graphql.String},
			"granularity": &graphql.Field{Type: graphql.String},
			"points":      &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"countries": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "List selectable region names, World first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Boundaries.Countries(p.Context)
				},
			},
			"country": &graphql.Field{
				Type:        countryType,
				Description: "Resolve one region's name and bounding box",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name := p.Args["name"].(string)
					b, err := deps.Boundaries.Resolve(p.Context, name)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"name": b.Name,
						"bbox": map[string]interface{}{
							"min_lon": b.BBox.MinLon,
							"min_lat": b.BBox.MinLat,
							"max_lon": b.BBox.MaxLon,
							"max_lat": b.BBox.MaxLat,
						},
					}, nil
				},
			},
			"timeseries": &graphql.Field{
				Type:        seriesType,
				Description: "One-year series of regional means",
				Args: graphql.FieldConfigArgument{
					"country":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.WorldName},
					"year":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: DefaultYear},
					"metric":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "ndvi"},
					"granularity": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "composite"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					country := p.Args["country"].(string)
					year := p.Args["year"].(int)

					var metric domain.Metric
					switch p.Args["metric"].(string) {
					case "ndvi":
						metric = domain.MetricNDVI
					case "bloom":
						metric = domain.MetricBloom
					default:
						return nil, errors.New("metric must be ndvi or bloom")
					}

					var gran domain.Granularity
					switch p.Args["granularity"].(string) {
					case "composite":
						gran = domain.GranularityComposite
					case "monthly":
						gran = domain.GranularityMonthly
					default:
						return nil, errors.New("granularity must be composite or monthly")
					}

					b, err := deps.Boundaries.Resolve(p.Context, country)
					if err != nil {
						return nil, err
					}
					ts, err := deps.TimeSeries.Series(p.Context, b, domain.SourceMODIS, year, gran, metric)
					if err != nil {
						return nil, err
					}

					points := make([]map[string]interface{}, 0, len(ts.Points))
					for _, pt := range ts.Points {
						m := map[string]interface{}{"date": pt.Date.Format("2006-01-02")}
						if pt.Value != nil {
							m["value"] = *pt.Value
						}
						points = append(points, m)
					}
					return map[string]interface{}{
						"country":     ts.Country,
						"year":        ts.Year,
						"metric":      string(ts.Metric),
						"granularity": string(ts.Granularity),
						"points":      points,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
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
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
