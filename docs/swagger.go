// Package docs registers the OpenAPI description served at /swagger/*any.
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
        "/healthz": {
            "get": {"tags": ["Session"], "summary": "Liveness check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/session": {
            "post": {"tags": ["Session"], "summary": "Start an anonymous session", "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.SessionResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "List my projects", "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Project"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Create a project",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateProjectRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Project"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/join": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Join a project by share code",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "join", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.JoinProjectRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.JoinProjectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Get a project", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Project"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "List a project's tasks", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Task"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Create a task",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TaskInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/tasks/{task_id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Replace a task's fields",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "task_id", "in": "path", "required": true},
                    {"name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TaskInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Delete a task",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "task_id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/tasks/{task_id}/status": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Change a task's status",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "task_id", "in": "path", "required": true},
                    {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TaskStatusRequest"}}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/board": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Board"], "summary": "Kanban columns", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/board.Column"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/board/move": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Board"], "summary": "Drop a task on a column",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "move", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.MoveTaskRequest"}}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/timeline": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Board"], "summary": "Gantt layout", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Evaluate styles at this RFC 3339 instant", "name": "now", "in": "query"}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/projects/{id}/stream": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Streams"], "summary": "Live project stream", "produces": ["text/event-stream"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}}}
        },
        "/me/projects/stream": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Streams"], "summary": "Live project list stream", "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string", "example": "Invalid project code."}}},
        "handler.SessionResponse": {"type": "object", "properties": {
            "principal": {"type": "string"}, "token": {"type": "string"}, "expires_at": {"type": "string"}}},
        "handler.CreateProjectRequest": {"type": "object", "properties": {"name": {"type": "string", "example": "Launch"}}},
        "handler.JoinProjectRequest": {"type": "object", "properties": {"code": {"type": "string", "example": "K7Q2ZD"}}},
        "handler.JoinProjectResponse": {"type": "object", "properties": {
            "project": {"$ref": "#/definitions/model.Project"}, "already_member": {"type": "boolean"}, "message": {"type": "string"}}},
        "handler.TaskStatusRequest": {"type": "object", "properties": {"status": {"type": "string", "enum": ["ToDo", "InProgress", "Done"]}}},
        "handler.MoveTaskRequest": {"type": "object", "properties": {
            "task_id": {"type": "string"}, "status": {"type": "string", "enum": ["ToDo", "InProgress", "Done"]}}},
        "model.Project": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "owner_id": {"type": "string"},
            "shared_code": {"type": "string"}, "members": {"type": "array", "items": {"type": "string"}},
            "created_at": {"type": "string"}}},
        "model.TaskInput": {"type": "object", "properties": {
            "name": {"type": "string"}, "start_date": {"type": "string", "example": "2024-01-01"},
            "end_date": {"type": "string", "example": "2024-01-03"}, "responsible": {"type": "string"},
            "status": {"type": "string", "enum": ["ToDo", "InProgress", "Done"]}, "phase": {"type": "string"}}},
        "model.Task": {"type": "object", "properties": {
            "id": {"type": "string"}, "project_id": {"type": "string"}, "name": {"type": "string"},
            "start_date": {"type": "string"}, "end_date": {"type": "string"}, "responsible": {"type": "string"},
            "status": {"type": "string", "enum": ["ToDo", "InProgress", "Done"]}, "phase": {"type": "string"}}},
        "board.Column": {"type": "object", "properties": {
            "status": {"type": "string"}, "title": {"type": "string"},
            "tasks": {"type": "array", "items": {"$ref": "#/definitions/model.Task"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token or a Firebase ID token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Real-time shared project scheduling: projects joined by share code, tasks on a Kanban board and a Gantt timeline, live updates over server-sent events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
