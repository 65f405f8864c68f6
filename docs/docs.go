package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "Dayflow API Documentation",
        "title": "Dayflow API",
        "version": "1.0"
    },
    "host": "localhost:5000",
    "basePath": "/",
    "schemes": ["http"],
    "paths": {
        "/api/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {
                    "200": {"description": "Server is healthy"}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "account",
                        "description": "Name, email and password",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "name": {"type": "string"},
                                "email": {"type": "string"},
                                "password": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {"description": "Account created; token and user returned"},
                    "400": {"description": "User already exists"}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "description": "Email and password",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "email": {"type": "string"},
                                "password": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Token and user returned"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks, newest-created first",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Task list"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Task created"},
                    "400": {"description": "Invalid task"}
                }
            }
        },
        "/api/tasks/{id}": {
            "patch": {
                "tags": ["Tasks"],
                "summary": "Partially update a task",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated task"},
                    "404": {"description": "Task not found"}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task deleted"},
                    "404": {"description": "Task not found"}
                }
            }
        },
        "/api/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List daily notes",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Note list"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "tags": ["Notes"],
                "summary": "Create or overwrite the note for a day",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Upserted note"},
                    "400": {"description": "Invalid date"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Dayflow API",
	Description:      "Dayflow API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
