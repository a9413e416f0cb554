package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"altitude":  &graphql.Field{Type: graphql.Float},
		},
	})

	vectorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vector",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
			"z": &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"handle":     &graphql.Field{Type: graphql.String},
			"generation": &graphql.Field{Type: graphql.Int},
			"coordinate": &graphql.Field{Type: coordinateType},
			"position":   &graphql.Field{Type: vectorType},
			"color":      &graphql.Field{Type: graphql.String},
			"radius":     &graphql.Field{Type: graphql.Float},
			"distance_m": &graphql.Field{Type: graphql.Float},
		},
	})

	generationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Generation",
		Fields: graphql.Fields{
			"seq":        &graphql.Field{Type: graphql.Int},
			"hour":       &graphql.Field{Type: graphql.Int},
			"fetched_at": &graphql.Field{Type: graphql.String},
			"markers":    &graphql.Field{Type: graphql.Int},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"city":        &graphql.Field{Type: graphql.String},
			"countryCode": &graphql.Field{Type: graphql.String},
			"continent":   &graphql.Field{Type: graphql.String},
			"locality":    &graphql.Field{Type: graphql.String},
			"message":     &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Markers of the current generation",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 500},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					all := deps.Registry.All()
					if offset < 0 || offset >= len(all) {
						return []map[string]interface{}{}, nil
					}
					end := len(all)
					if limit > 0 && offset+limit < end {
						end = offset + limit
					}
					out := make([]map[string]interface{}, 0, end-offset)
					for _, m := range all[offset:end] {
						out = append(out, markerMap(m))
					}
					return out, nil
				},
			},
			"marker": &graphql.Field{
				Type:        markerType,
				Description: "A marker of the current generation by handle",
				Args: graphql.FieldConfigArgument{
					"handle": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, ok := deps.Registry.Lookup(p.Args["handle"].(string))
					if !ok {
						return nil, nil
					}
					return markerMap(m), nil
				},
			},
			"nearby": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Markers whose ground track is near a location",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius_km"].(float64)
					limit := p.Args["limit"].(int)
					near := deps.Registry.Nearby(lat, lon, radius*1000, limit)
					out := make([]map[string]interface{}, 0, len(near))
					for _, n := range near {
						m := markerMap(n.Marker)
						m["distance_m"] = n.DistanceMeters
						out = append(out, m)
					}
					return out, nil
				},
			},
			"generation": &graphql.Field{
				Type:        generationType,
				Description: "Summary of the current marker generation",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					gen := deps.Registry.Snapshot()
					return map[string]interface{}{
						"seq":        int(gen.Seq),
						"hour":       gen.Hour,
						"fetched_at": gen.FetchedAt.Format(time.RFC3339),
						"markers":    len(gen.Markers),
					}, nil
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Reverse-geocode a coordinate",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Places == nil {
						return nil, nil
					}
					place, err := deps.Places.Reverse(p.Context, p.Args["lat"].(float64), p.Args["lon"].(float64))
					if err != nil && !errors.Is(err, domain.ErrEmptyResult) {
						return nil, err
					}
					return map[string]interface{}{
						"city":        place.City,
						"countryCode": place.CountryCode,
						"continent":   place.Continent,
						"locality":    place.Locality,
						"message":     usecases.ComposePlaceMessage(place),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func markerMap(m domain.Marker) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"handle":     m.Handle,
		"generation": int(m.Generation),
		"coordinate": map[string]interface{}{
			"latitude":  m.Coordinate.Latitude,
			"longitude": m.Coordinate.Longitude,
			"altitude":  m.Coordinate.Altitude,
		},
		"position": map[string]interface{}{
			"x": m.Position.X,
			"y": m.Position.Y,
			"z": m.Position.Z,
		},
		"color":  m.ColorHex,
		"radius": m.Radius,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
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
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
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
