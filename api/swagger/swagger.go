package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Scheduler API",
        "description": "Exam timetabling, room assignment and seating plans.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Exam Scheduling", "description": "Timetable generation and term listings"},
        {"name": "Seating", "description": "Seat plans per exam"}
    ],
    "paths": {
        "/exam-schedules/generate": {
            "post": {
                "tags": ["Exam Scheduling"],
                "summary": "Generate an exam timetable",
                "description": "Places every selected course into a day, time slot and rooms. With dryRun the placements are returned without being stored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GenerateExamScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Preview", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent run or booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Configuration failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unschedulable courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-terms/{id}/exams": {
            "get": {
                "tags": ["Exam Scheduling"],
                "summary": "List the exams of a term",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-terms/{id}/export": {
            "get": {
                "tags": ["Exam Scheduling"],
                "summary": "Export a term timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/departments/{id}/exams/latest": {
            "get": {
                "tags": ["Seating"],
                "summary": "Latest exams of a department",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Seating"],
                "summary": "Exam with its rooms",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/seating": {
            "post": {
                "tags": ["Seating"],
                "summary": "Generate the seating plan of an exam",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Not enough seats or no rooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Seating"],
                "summary": "Stored seating plan of an exam",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/seating/export": {
            "get": {
                "tags": ["Seating"],
                "summary": "Export a seating plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        }
    },
    "definitions": {
        "GenerateExamScheduleRequest": {
            "type": "object",
            "required": ["departmentId", "startDate", "endDate", "examType"],
            "properties": {
                "departmentId": {"type": "string"},
                "courseCodes": {"type": "array", "items": {"type": "string"}},
                "startDate": {"type": "string", "example": "2024-06-03"},
                "endDate": {"type": "string", "example": "2024-06-14"},
                "excludedWeekdays": {"type": "array", "items": {"type": "string"}, "example": ["Sat", "Sun"]},
                "examType": {"type": "string", "example": "MIDTERM"},
                "durationMinutes": {"type": "integer", "example": 75},
                "gapMinutes": {"type": "integer", "example": 15},
                "noOverlap": {"type": "boolean"},
                "customDurations": {"type": "object", "additionalProperties": {"type": "integer"}},
                "windowStart": {"type": "string", "example": "10:00"},
                "windowEnd": {"type": "string", "example": "17:00"},
                "dryRun": {"type": "boolean"},
                "seed": {"type": "integer"}
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
