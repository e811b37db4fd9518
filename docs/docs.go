// Package docs registers the swagger document served at /swagger.
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
        "/contact": {
            "get": {
                "description": "Returns the visitor's field values, field errors, submission status and cooldown.",
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Get contact form state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ContactFormState"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Discards the visitor's form. The cooldown survives because it is persisted.",
                "tags": ["contact"],
                "summary": "End the contact session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/contact/cooldown": {
            "get": {
                "description": "Returns the seconds left before the visitor may send another message.",
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Get remaining cooldown",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CooldownResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/contact/fields/{field}": {
            "put": {
                "description": "Overwrites one field and clears its validation error.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Update a contact form field",
                "parameters": [
                    {"enum": ["name", "email", "message", "honeypot"], "type": "string", "description": "Field name", "name": "field", "in": "path", "required": true},
                    {"description": "New value", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.FieldUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ContactFormState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/contact/submit": {
            "post": {
                "description": "Applies any field values in the body, validates the form and sends the message.\nSubmissions that fill the honeypot field are accepted without being sent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Submit the contact form",
                "parameters": [
                    {"description": "Field values to apply first", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/types.ContactSubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ContactFormState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/contact/validate": {
            "post": {
                "description": "Evaluates the current input without changing any state.",
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Validate the contact form",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ValidationResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ContactFormState": {
            "type": "object",
            "properties": {
                "cooldownDisplay": {"type": "string"},
                "cooldownRemaining": {"type": "integer"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "fields": {"$ref": "#/definitions/types.FormInput"},
                "locked": {"type": "boolean"},
                "status": {"type": "string", "enum": ["idle", "submitting", "success", "cooldown", "error"]}
            }
        },
        "types.ContactSubmitRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "honeypot": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "types.CooldownResponse": {
            "type": "object",
            "properties": {
                "availableAt": {"type": "string"},
                "display": {"type": "string"},
                "onCooldown": {"type": "boolean"},
                "seconds": {"type": "integer"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "types.FieldUpdateRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
            }
        },
        "types.FormInput": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "honeypot": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "types.ValidationResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "valid": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Portfolio Contact API",
	Description:      "Contact form backend: validation, honeypot filtering, cooldown and email delivery.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
