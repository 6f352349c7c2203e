// Package docs registers the API description served at /swagger.
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
        "/videos": {
            "post": {
                "description": "Stores a source video record. Without a duration a probe job fills it in.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["videos"],
                "summary": "Register a source video",
                "parameters": [
                    {"description": "Video to register", "name": "video", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateSourceVideoRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "description": "Loads the source video, its transcript and stored clips. The session becomes ready once the media duration is known.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Open an editing session",
                "parameters": [
                    {"description": "Source video", "name": "session", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/media": {
            "post": {
                "description": "Sets the media duration and opens the ready gate. Stored clips that no longer fit are dropped.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Report loaded media",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Duration in seconds", "name": "media", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.MediaReadyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/clips": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "Add a clip",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Clip bounds in seconds", "name": "clip", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddClipRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "409": {"description": "Media not ready", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Clip rejected", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/playback/tick": {
            "post": {
                "description": "Applies the player's current time. Ticks before media ready or during a drag are ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Media clock update",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Played seconds", "name": "tick", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SecondsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/sessions/{id}/transcript/commit": {
            "post": {
                "description": "Derives [start, end] from the selected lines and adds the clip. The selection is cleared either way.",
                "produces": ["application/json"],
                "tags": ["transcript"],
                "summary": "Create a clip from selected transcript lines",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Empty or broken selection", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Derived clip rejected", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/render": {
            "post": {
                "description": "Sends clips to the remote render pipeline when one is configured, otherwise queues local ffmpeg extraction jobs.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["render"],
                "summary": "Render clips",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Clips to render", "name": "render", "in": "body", "schema": {"$ref": "#/definitions/handlers.RenderRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "409": {"description": "No clips", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AddClipRequest": {
            "type": "object",
            "required": ["end_time", "start_time"],
            "properties": {"end_time": {"type": "number"}, "start_time": {"type": "number"}}
        },
        "handlers.CreateSourceVideoRequest": {
            "type": "object",
            "required": ["storage_path", "title"],
            "properties": {
                "duration": {"type": "number"},
                "storage_path": {"type": "string"},
                "title": {"type": "string"},
                "transcription": {"type": "object"}
            }
        },
        "handlers.MediaReadyRequest": {
            "type": "object",
            "properties": {"duration": {"type": "number"}}
        },
        "handlers.OpenSessionRequest": {
            "type": "object",
            "required": ["source_video_id"],
            "properties": {"source_video_id": {"type": "string"}}
        },
        "handlers.RenderRequest": {
            "type": "object",
            "properties": {"clip_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "handlers.SecondsRequest": {
            "type": "object",
            "required": ["seconds"],
            "properties": {"seconds": {"type": "number"}}
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "reason": {"type": "string"},
                "status": {"type": "string", "example": "error"}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "status": {"type": "string", "example": "success"}
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
	Title:            "clipdeck API",
	Description:      "Multi-clip timeline editing sessions over source videos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
