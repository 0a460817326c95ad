// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/portal/main.go
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Landing",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}}
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [{"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.redirectResponse"}}}
            }
        },
        "/session/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh the access credential",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Get profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile",
                "parameters": [{"description": "Profile", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.profileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/request": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Service catalog",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.catalogResponse"}}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Request a service",
                "parameters": [
                    {"type": "string", "description": "Service from the catalog", "name": "serviceType", "in": "formData", "required": true},
                    {"type": "string", "description": "Bank transfer reference", "name": "transfer_id", "in": "formData", "required": true},
                    {"type": "file", "description": "Payment proof image", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.requestCreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/my-requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "My requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ordersResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Review orders",
                "parameters": [{"type": "string", "description": "Search by id, client, status or date", "name": "q", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ordersResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Update order status",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.statusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/orders/{id}/invoice": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["orders"],
                "summary": "Download invoice",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/orders/{id}/payment-proof": {
            "get": {
                "produces": ["image/jpeg"],
                "tags": ["orders"],
                "summary": "Download payment proof",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "redirect": {"type": "string"}}
        },
        "domain.Session": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "role": {"type": "string", "enum": ["user", "admin"]}}
        },
        "domain.Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "idType": {"type": "string", "enum": ["J", "G"]},
                "idNumber": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "role": {"type": "string"},
                "is_active": {"type": "boolean"},
                "isIdNumberLocked": {"type": "boolean"}
            }
        },
        "domain.CatalogEntry": {
            "type": "object",
            "properties": {"serviceType": {"type": "string"}, "amount": {"type": "number"}}
        },
        "guard.NavItem": {
            "type": "object",
            "properties": {"label": {"type": "string"}, "href": {"type": "string"}, "method": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "role"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["user", "admin"]}}
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "session": {"$ref": "#/definitions/domain.Session"},
                "redirect": {"type": "string"},
                "nav": {"type": "array", "items": {"$ref": "#/definitions/guard.NavItem"}}
            }
        },
        "handler.redirectResponse": {
            "type": "object",
            "properties": {"redirect": {"type": "string"}}
        },
        "handler.profileRequest": {
            "type": "object",
            "required": ["name", "idType", "idNumber", "phone", "address"],
            "properties": {
                "name": {"type": "string"},
                "idType": {"type": "string", "enum": ["J", "G"]},
                "idNumber": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "handler.profileResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/domain.Profile"},
                "idTypeLocked": {"type": "boolean"},
                "nav": {"type": "array", "items": {"$ref": "#/definitions/guard.NavItem"}}
            }
        },
        "handler.orderView": {
            "type": "object",
            "properties": {
                "order_id": {"type": "string"},
                "serviceType": {"type": "string"},
                "status": {"type": "string", "enum": ["Procesando Pago", "Aprobado", "Finalizado", "Cancelado"]},
                "created_at": {"type": "string", "format": "date-time"},
                "client_name": {"type": "string"},
                "transfer_id": {"type": "string"},
                "file_name": {"type": "string"},
                "has_payment_proof": {"type": "boolean"}
            }
        },
        "handler.ordersResponse": {
            "type": "object",
            "properties": {
                "orders": {"type": "array", "items": {"$ref": "#/definitions/handler.orderView"}},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "nav": {"type": "array", "items": {"$ref": "#/definitions/guard.NavItem"}}
            }
        },
        "handler.statusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["Procesando Pago", "Aprobado", "Finalizado", "Cancelado"]}}
        },
        "handler.catalogResponse": {
            "type": "object",
            "properties": {
                "services": {"type": "array", "items": {"$ref": "#/definitions/domain.CatalogEntry"}},
                "nav": {"type": "array", "items": {"$ref": "#/definitions/guard.NavItem"}}
            }
        },
        "handler.requestCreatedResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "order_id": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MarketingCRM Portal API",
	Description:      "Session-holding portal in front of the MarketingCRM backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
