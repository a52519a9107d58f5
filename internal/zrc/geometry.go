package zrc

import (
	"encoding/json"

	dErrors "zgw/pkg/domain-errors"
)

type geoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// geometryWithin reports whether geom lies inside the polygon. Point
// geometries use ray casting; for polygons every vertex must be inside.
// The postgres store delegates the same predicate to PostGIS.
func geometryWithin(geom, polygon json.RawMessage) (bool, error) {
	if len(geom) == 0 {
		return false, nil
	}
	ring, err := outerRing(polygon)
	if err != nil {
		return false, err
	}

	var parsed geoJSON
	if err := json.Unmarshal(geom, &parsed); err != nil {
		return false, dErrors.New(dErrors.CodeInvalidInput, "zaakgeometrie is not valid GeoJSON")
	}

	switch parsed.Type {
	case "Point":
		var pt [2]float64
		if err := json.Unmarshal(parsed.Coordinates, &pt); err != nil {
			return false, dErrors.New(dErrors.CodeInvalidInput, "zaakgeometrie point has invalid coordinates")
		}
		return pointInRing(pt, ring), nil
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(parsed.Coordinates, &rings); err != nil || len(rings) == 0 {
			return false, dErrors.New(dErrors.CodeInvalidInput, "zaakgeometrie polygon has invalid coordinates")
		}
		for _, vertex := range rings[0] {
			if !pointInRing(vertex, ring) {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

func outerRing(polygon json.RawMessage) ([][2]float64, error) {
	var parsed geoJSON
	if err := json.Unmarshal(polygon, &parsed); err != nil || parsed.Type != "Polygon" {
		return nil, dErrors.Param("zaakgeometrie", dErrors.CodeInvalidInput, "the search geometry must be a GeoJSON Polygon")
	}
	var rings [][][2]float64
	if err := json.Unmarshal(parsed.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) < 4 {
		return nil, dErrors.Param("zaakgeometrie", dErrors.CodeInvalidInput, "the search polygon has no valid outer ring")
	}
	return rings[0], nil
}

// pointInRing is the even-odd ray casting test.
func pointInRing(pt [2]float64, ring [][2]float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > pt[1]) != (yj > pt[1]) &&
			pt[0] < (xj-xi)*(pt[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
