package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Deadline-aware study block allocation over a versioned plan collection.",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "PlanBlocks", "description": "Versioned plan block collection"},
        {"name": "Planner", "description": "Allocation proposals and change reports"},
        {"name": "Preferences", "description": "Availability windows and daily caps"}
    ],
    "paths": {
        "/planblocks": {
            "get": {
                "tags": ["PlanBlocks"],
                "summary": "List plan blocks",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "If-None-Match", "in": "header", "type": "string", "required": false}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "304": {"description": "Not modified"}
                }
            },
            "post": {
                "tags": ["PlanBlocks"],
                "summary": "Create a plan block",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "If-Match", "in": "header", "type": "string", "required": false},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanBlockDraft"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict or duplicate id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planblocks/{id}": {
            "patch": {
                "tags": ["PlanBlocks"],
                "summary": "Update a plan block",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "If-Match", "in": "header", "type": "string", "required": false},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanBlockPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["PlanBlocks"],
                "summary": "Delete a plan block",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "If-Match", "in": "header", "type": "string", "required": false}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planblocks/export": {
            "get": {
                "tags": ["PlanBlocks"],
                "summary": "Export the plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "required": false}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/planner/generate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Propose study blocks for deliverables",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/apply": {
            "post": {
                "tags": ["Planner"],
                "summary": "Persist a proposal or explicit drafts",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "If-Match", "in": "header", "type": "string", "required": false},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/diff": {
            "post": {
                "tags": ["Planner"],
                "summary": "Explain differences between two plan snapshots",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DiffPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-day changes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/preferences/availability": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Get availability preferences",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace availability preferences",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityProfile"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PlanBlockDraft": {
            "type": "object",
            "required": ["title", "start", "end"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "courseId": {"type": "string"},
                "relatedAssignmentId": {"type": "string"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "PlanBlock": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "courseId": {"type": "string"},
                "relatedAssignmentId": {"type": "string"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "PlanBlockPatch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "courseId": {"type": "string"},
                "relatedAssignmentId": {"type": "string"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "Deliverable": {
            "type": "object",
            "required": ["id", "title", "dueAt"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "courseId": {"type": "string"},
                "dueAt": {"type": "string", "format": "date-time"},
                "estimatedMinutes": {"type": "integer"},
                "weight": {"type": "number"},
                "points": {"type": "number"}
            }
        },
        "TimeWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "16:00"},
                "end": {"type": "string", "example": "21:00"}
            }
        },
        "AvailabilityProfile": {
            "type": "object",
            "properties": {
                "byDay": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "object",
                        "properties": {
                            "enabled": {"type": "boolean"},
                            "start": {"type": "string", "example": "16:00"},
                            "end": {"type": "string", "example": "21:00"}
                        }
                    }
                },
                "maxMinutesPerDay": {"type": "integer"},
                "protectedHours": {"$ref": "#/definitions/TimeWindow"}
            }
        },
        "GeneratePlanRequest": {
            "type": "object",
            "required": ["deliverables"],
            "properties": {
                "deliverables": {"type": "array", "items": {"$ref": "#/definitions/Deliverable"}},
                "availability": {"$ref": "#/definitions/AvailabilityProfile"},
                "now": {"type": "string", "format": "date-time"},
                "timezone": {"type": "string"},
                "countExisting": {"type": "boolean"}
            }
        },
        "ApplyPlanRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "version": {"type": "string"},
                "timezone": {"type": "string"},
                "blocks": {"type": "array", "items": {"$ref": "#/definitions/PlanBlockDraft"}}
            }
        },
        "DiffPlanRequest": {
            "type": "object",
            "properties": {
                "old": {"type": "array", "items": {"$ref": "#/definitions/PlanBlock"}},
                "new": {"type": "array", "items": {"$ref": "#/definitions/PlanBlock"}},
                "capMinutesPerDay": {"type": "integer"},
                "timezone": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
