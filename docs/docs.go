// Package docs holds the OpenAPI description served under /swagger.
//
// This file is maintained by hand in the layout swag generates. Every route
// registered under /api must have a path here; the routes package tests
// enforce it.
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
        "/session": {
            "get": {"tags": ["session"], "summary": "Current identity state of the calling browser", "responses": {"200": {"description": "OK"}}}
        },
        "/gate": {
            "get": {"tags": ["session"], "summary": "Access decision for a portal path", "parameters": [{"name": "path", "in": "query", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/auth/signup": {
            "post": {"tags": ["auth"], "summary": "Create a password account and sign in", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate account"}}}
        },
        "/auth/signin": {
            "post": {"tags": ["auth"], "summary": "Sign in with email and password", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}, "429": {"description": "Too many attempts"}}}
        },
        "/auth/signout": {
            "post": {"tags": ["auth"], "summary": "Sign out", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/account": {
            "delete": {"tags": ["auth"], "summary": "Delete the signed-in account", "responses": {"200": {"description": "Deleted"}, "202": {"description": "Reauthentication popup started"}}}
        },
        "/auth/federated/google": {
            "post": {"tags": ["auth"], "summary": "Start a Google popup sign-in", "responses": {"202": {"description": "Popup URL issued"}, "409": {"description": "A popup is already open"}}}
        },
        "/auth/federated/google/callback": {
            "get": {"tags": ["auth"], "summary": "OAuth redirect target; renders the page that reports the result to the opener", "produces": ["text/html"], "responses": {"200": {"description": "OK"}}}
        },
        "/feedback": {
            "get": {"tags": ["feedback"], "summary": "List all feedback (staff)", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["feedback"], "summary": "Submit feedback", "responses": {"201": {"description": "Created"}}}
        },
        "/feedback/mine": {
            "get": {"tags": ["feedback"], "summary": "List the caller's feedback", "responses": {"200": {"description": "OK"}}}
        },
        "/feedback/review": {
            "get": {"tags": ["feedback"], "summary": "Feedback review board (staff)", "responses": {"200": {"description": "OK"}}}
        },
        "/feedback/{id}/review": {
            "post": {"tags": ["feedback"], "summary": "Mark feedback reviewed (staff)", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tickets": {
            "get": {"tags": ["tickets"], "summary": "List all tickets (staff)", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tickets"], "summary": "Create a ticket", "responses": {"201": {"description": "Created"}}}
        },
        "/tickets/mine": {
            "get": {"tags": ["tickets"], "summary": "List the caller's tickets", "responses": {"200": {"description": "OK"}}}
        },
        "/tickets/board": {
            "get": {"tags": ["tickets"], "summary": "Ticket board with status counts (staff)", "responses": {"200": {"description": "OK"}}}
        },
        "/tickets/{id}": {
            "get": {"tags": ["tickets"], "summary": "Ticket with replies, by number or id", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not the owner"}}}
        },
        "/tickets/{id}/status": {
            "patch": {"tags": ["tickets"], "summary": "Change ticket status (staff)", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tickets/{id}/replies": {
            "get": {"tags": ["tickets"], "summary": "Ticket replies, oldest first", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tickets"], "summary": "Reply to a ticket (staff)", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}
        },
        "/interactions": {
            "get": {"tags": ["interactions"], "summary": "Merged feedback and ticket history with stats", "responses": {"200": {"description": "OK"}}}
        },
        "/uploads": {
            "post": {"tags": ["uploads"], "summary": "Upload attachments", "consumes": ["multipart/form-data"], "responses": {"200": {"description": "At least one file stored"}, "400": {"description": "Nothing stored"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CX Portal API",
	Description:      "Customer feedback, support tickets and interaction history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
