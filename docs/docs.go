// Package docs is the OpenAPI document served at /v1/docs. Regenerate with
// `swag init -g cmd/main.go` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ProfileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "With reminder set the token lives for 30 days instead of one.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive a token",
                "parameters": [
                    {"description": "credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/login.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/verify": {
            "post": {
                "description": "The token is read from the body, or from the Authorization header when the body has none.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Check a token",
                "parameters": [
                    {"description": "token", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/verify.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/verify.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/verify.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/verify.Response"}}
                }
            }
        },
        "/category/create": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["category"],
                "summary": "Create a category",
                "parameters": [
                    {"description": "category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/category.CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/category/delete/{id}": {
            "delete": {
                "security": [{"Bearer": []}],
                "description": "Fails while any expense or incoming still references it.",
                "produces": ["application/json"],
                "tags": ["category"],
                "summary": "Delete a category",
                "parameters": [
                    {"type": "string", "description": "category id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/category/list": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["category"],
                "summary": "List categories with the caller's entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/category/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["category"],
                "summary": "Get one category",
                "parameters": [
                    {"type": "string", "description": "category id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/{kind}/create": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Expenses need a negative amount, incomings a positive one. Magnitudes must stay below 1e12.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entry"],
                "summary": "Record an expense or incoming",
                "parameters": [
                    {"enum": ["expense", "incoming"], "type": "string", "description": "expense or incoming", "name": "kind", "in": "path", "required": true},
                    {"description": "entry", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/entry.CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/{kind}/delete/{id}": {
            "delete": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["entry"],
                "summary": "Delete one of the caller's entries",
                "parameters": [
                    {"enum": ["expense", "incoming"], "type": "string", "description": "expense or incoming", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "entry id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/{kind}/list": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["entry"],
                "summary": "List the caller's entries, newest first",
                "parameters": [
                    {"enum": ["expense", "incoming"], "type": "string", "description": "expense or incoming", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/transactions/monthly-list": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Covers the whole calendar month in UTC.",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Monthly transactions and totals",
                "parameters": [
                    {"type": "integer", "description": "1..12", "name": "month", "in": "query", "required": true},
                    {"type": "integer", "description": ">= 1900", "name": "year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {}
            }
        },
        "models.Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.ProfileResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/models.Profile"}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "name": {"type": "string", "maxLength": 100, "minLength": 1},
                "password": {"type": "string", "maxLength": 72, "minLength": 8}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "reminder": {"type": "boolean"}
            }
        },
        "login.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token": {"type": "string"},
                "data": {"$ref": "#/definitions/models.Profile"}
            }
        },
        "verify.Request": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "verify.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "valid": {"type": "boolean"},
                "token": {"type": "string"},
                "data": {"$ref": "#/definitions/models.Profile"}
            }
        },
        "category.CreateRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 30, "minLength": 3}
            }
        },
        "entry.CreateRequest": {
            "type": "object",
            "required": ["amount", "categoryId", "name"],
            "properties": {
                "name": {"type": "string", "maxLength": 100, "minLength": 1},
                "amount": {"type": "number", "exclusiveMinimum": true, "minimum": -1000000000000, "exclusiveMaximum": true, "maximum": 1000000000000},
                "categoryId": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Finance API",
	Description:      "Personal finance tracking: auth, categories, expenses, incomings and monthly totals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
