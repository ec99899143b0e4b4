// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/locations": {
            "get": {
                "description": "Lists work-friendly cafes and public libraries within 2 km, each scored with a seat availability likelihood.",
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Nearby cafes and libraries",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true},
                    {"enum": ["cafe", "library", "all"], "type": "string", "description": "cafe, library or all", "name": "type", "in": "query"},
                    {"type": "integer", "description": "Day offset from today (0-6), requires hour", "name": "day", "in": "query"},
                    {"type": "integer", "description": "Hour of day (0-23), requires day", "name": "hour", "in": "query"},
                    {"enum": ["device", "search"], "type": "string", "description": "device or search", "name": "origin", "in": "query"},
                    {"type": "string", "description": "IANA time zone of the caller, e.g. America/Los_Angeles", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LocationsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.LocationsResponse"}}
                }
            }
        },
        "/availability/forecast": {
            "get": {
                "description": "Returns the predicted seat availability at six anchor hours for a day.",
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Availability forecast",
                "parameters": [
                    {"type": "integer", "description": "Day offset from today (0-6)", "name": "day", "in": "query"},
                    {"type": "string", "description": "IANA time zone of the caller, e.g. America/Los_Angeles", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ForecastResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/geocode": {
            "get": {
                "description": "Resolves free text to coordinates using the first geocoding match.",
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Geocode a place name",
                "parameters": [
                    {"type": "string", "description": "Free-text place or address", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GeocodeResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/popularity/{placeID}": {
            "get": {
                "description": "Returns the hourly popularity histogram stored for a place on one weekday (today by default).",
                "produces": ["application/json"],
                "tags": ["Popularity"],
                "summary": "Get stored popularity",
                "parameters": [
                    {"type": "string", "description": "Provider place id", "name": "placeID", "in": "path", "required": true},
                    {"type": "string", "description": "Weekday name, e.g. Monday", "name": "weekday", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PopularityHistogram"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            },
            "put": {
                "description": "Replaces the hourly popularity histogram of a place for one weekday.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Popularity"],
                "summary": "Replace stored popularity",
                "parameters": [
                    {"type": "string", "description": "Provider place id", "name": "placeID", "in": "path", "required": true},
                    {"description": "Weekday and hour to popularity map", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdatePopularityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PopularityHistogram"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "request_id": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "types.OpeningHours": {
            "type": "object",
            "properties": {
                "open_now": {"type": "boolean"},
                "weekday_descriptions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.LocationView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["cafe", "library"]},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "plus_code": {"type": "string"},
                "address": {"type": "string"},
                "busyness": {"type": "string", "enum": ["low", "moderate", "high"]},
                "likelihood": {"type": "integer"},
                "has_wifi": {"type": "boolean"},
                "distance": {"type": "integer"},
                "walking_time": {"type": "integer"},
                "rating": {"type": "number"},
                "rating_count": {"type": "integer"},
                "opening_hours": {"$ref": "#/definitions/types.OpeningHours"},
                "closes_at": {"type": "string"}
            }
        },
        "types.LocationsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "error": {"type": "string"},
                "locations": {"type": "array", "items": {"$ref": "#/definitions/types.LocationView"}}
            }
        },
        "types.ForecastSlot": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "hour": {"type": "integer"},
                "likelihood": {"type": "integer"},
                "time": {"type": "string"}
            }
        },
        "types.ForecastResponse": {
            "type": "object",
            "properties": {
                "day_offset": {"type": "integer"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/types.ForecastSlot"}},
                "weekday": {"type": "string"}
            }
        },
        "types.GeocodeResult": {
            "type": "object",
            "properties": {
                "formatted_address": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "types.PopularityHistogram": {
            "type": "object",
            "properties": {
                "hours": {"type": "object", "additionalProperties": {"type": "integer"}},
                "place_id": {"type": "string"},
                "updated_at": {"type": "string"},
                "weekday": {"type": "string"}
            }
        },
        "types.UpdatePopularityRequest": {
            "type": "object",
            "properties": {
                "hours": {"type": "object", "additionalProperties": {"type": "integer"}},
                "weekday": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Seat Scout API",
	Description:      "Find a nearby cafe or library with a free seat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
