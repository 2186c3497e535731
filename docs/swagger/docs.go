// Package swagger holds the OpenAPI document served at /swagger. Regenerate
// with `swag init -g cmd/server/server.go -o docs/swagger`.
package swagger

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
        "/api/v1/agent/threads/{thread_id}/run": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores the user message and streams the run as Server Sent Events named token, reasoning, tool_start, tool_end, done and error.",
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["Agent"],
                "summary": "Run the advisory agent",
                "parameters": [
                    {"type": "string", "description": "Thread ID", "name": "thread_id", "in": "path", "required": true},
                    {"description": "User message", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.RunRequest"}}
                ],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/api/v1/agent/threads/{thread_id}/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Agent"],
                "summary": "List thread messages",
                "parameters": [
                    {"type": "string", "description": "Thread ID", "name": "thread_id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum number of messages", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/api/v1/agent/tools": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Agent"],
                "summary": "List agent tools",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/threads": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Threads"], "summary": "List threads", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Threads"], "summary": "Create thread", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/threads/{thread_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Threads"], "summary": "Get thread", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Threads"], "summary": "Update thread", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Threads"], "summary": "Delete thread", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/farms": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Farms"], "summary": "List farms", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Farms"], "summary": "Create farm", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/farms/{farm_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Farms"], "summary": "Get farm", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Farms"], "summary": "Update farm", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Farms"], "summary": "Deactivate farm", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/farms/{farm_id}/zones": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Zones"], "summary": "List zones", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Zones"], "summary": "Create zone", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/zones/{zone_id}/sensors": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Sensors"], "summary": "List sensor readings", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/zones/{zone_id}/sensors/latest": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Sensors"], "summary": "Latest sensor reading", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/sensors": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Sensors"], "summary": "Ingest sensor reading", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/zones/{zone_id}/alerts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "List zone alerts", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Raise alert", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/farms/{farm_id}/alerts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "List farm alerts", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/alerts/{alert_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Get alert", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Update or resolve alert", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Delete alert", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/farms/{farm_id}/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "List farm tasks", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Create task", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/tasks/{task_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Get task", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Update task", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Delete task", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/farms/{farm_id}/team": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "List team members", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "Add team member", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/team/{member_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "Get team member", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "Update team member", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "Deactivate team member", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/team/{member_id}/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Team"], "summary": "Tasks assigned to a member", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "requests.RunRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agri Advisory API",
	Description:      "Agricultural advisory agent with streamed runs, conversation threads, farms, sensor readings, zone alerts, tasks and teams.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
