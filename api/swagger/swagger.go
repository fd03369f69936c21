package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hall Ticket API",
        "description": "Examination hall ticket generation service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Rosters", "description": "Student roster import and management"},
        {"name": "Tickets", "description": "Hall ticket generation and delivery"},
        {"name": "Assets", "description": "Student photos and institution logos"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/rosters/import": {
            "post": {
                "tags": ["Rosters"],
                "summary": "Import a roster from tabular rows",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RosterImportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rosters": {
            "get": {
                "tags": ["Rosters"],
                "summary": "List saved rosters",
                "parameters": [
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rosters/{id}": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Get roster",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Rosters"],
                "summary": "Delete roster",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/rosters/{id}/schedule": {
            "post": {
                "tags": ["Rosters"],
                "summary": "Overlay a subject schedule onto a roster",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleApplyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rosters/{id}/export": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Export roster as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/api/v1/tickets/generate": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Generate hall tickets synchronously",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "400": {"description": "Empty roster or invalid payload"}
                }
            }
        },
        "/api/v1/tickets/preview": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Preview ticket layout with a sample student",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/api/v1/tickets/jobs": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Queue asynchronous generation over a saved roster",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/JobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tickets/jobs/{id}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Generation job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tickets/download/{token}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Download a generated document with a signed token",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/api/v1/tickets/presets": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Built-in customization presets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assets/photos/{identifier}": {
            "post": {
                "tags": ["Assets"],
                "summary": "Upload a student photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "identifier", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Unsupported or oversized image"}
                }
            },
            "delete": {
                "tags": ["Assets"],
                "summary": "Delete a stored student photo",
                "parameters": [
                    {"name": "identifier", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/assets/logos/{slot}": {
            "post": {
                "tags": ["Assets"],
                "summary": "Upload a logo (primary or secondary slot)",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "slot", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        }
    },
    "definitions": {
        "Subject": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "time": {"type": "string"},
                "duration": {"type": "string"}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string"},
                "name": {"type": "string"},
                "admissionNumber": {"type": "string"},
                "fatherName": {"type": "string"},
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Subject"}
                }
            }
        },
        "RosterImportRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "kind": {"type": "string", "enum": ["college", "school", "general"]},
                "headers": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
            },
            "required": ["name", "headers", "rows"]
        },
        "ScheduleApplyRequest": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Subject"}
                }
            },
            "required": ["entries"]
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "roster_id": {"type": "string"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "kind": {"type": "string"},
                "mode": {"type": "string", "enum": ["bulk_same_student", "paired_students", "single_per_page"]},
                "metadata": {"type": "object"},
                "customization": {"type": "object"}
            }
        },
        "PreviewRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "mode": {"type": "string"},
                "metadata": {"type": "object"},
                "customization": {"type": "object"}
            }
        },
        "JobRequest": {
            "type": "object",
            "properties": {
                "roster_id": {"type": "string"},
                "mode": {"type": "string"},
                "metadata": {"type": "object"},
                "customization": {"type": "object"}
            },
            "required": ["roster_id"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
