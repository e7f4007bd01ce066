// Package docs registers the OpenAPI document of the service with swag.
// Regenerate with: swag init -g internal/api/api.go -o docs --parseInternal
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
        "/api/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ping"],
                "summary": "Ping endpoint.",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/token/login/": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Obtain an access token.",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid credentials"}}
            }
        },
        "/api/recipes/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "List recipes.",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Create a recipe.",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/api/recipes/download_shopping_cart/": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["text/plain"],
                "tags": ["Recipes"],
                "summary": "Download the shopping list.",
                "responses": {"200": {"description": "Shopping list"}}
            }
        },
        "/s/{code}": {
            "get": {
                "tags": ["Links"],
                "summary": "Follow a short link.",
                "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}],
                "responses": {"302": {"description": "Found"}, "404": {"description": "Link not found"}}
            }
        }
    },
    "securityDefinitions": {
        "TokenAuth": {
            "description": "\"Token <jwt>\" or \"Bearer <jwt>\"",
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
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "Recipes, favorites, shopping lists and author subscriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
