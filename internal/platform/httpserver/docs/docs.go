// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/v1/listings": {
            "get": {"tags": ["listings"], "summary": "Browse active listings", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["listings"], "summary": "Submit a listing as a member or a guest", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "403": {"description": "Quota exceeded"}, "422": {"description": "Content not allowed"}}}
        },
        "/v1/listings/{listing_id}": {
            "get": {"tags": ["listings"], "summary": "Get an active listing", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "patch": {"tags": ["listings"], "summary": "Edit a listing", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["listings"], "summary": "Delete a listing", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/listings/{listing_id}/verification": {
            "post": {"tags": ["verification"], "summary": "Re-send the guest verification code", "responses": {"202": {"description": "Accepted"}}}
        },
        "/v1/listings/{listing_id}/verification/confirm": {
            "post": {"tags": ["verification"], "summary": "Confirm the guest verification code", "responses": {"200": {"description": "OK"}, "410": {"description": "Code expired"}, "429": {"description": "Too many attempts"}}}
        },
        "/v1/listings/{listing_id}/favorite": {
            "post": {"tags": ["favorites"], "summary": "Favorite a listing", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}},
            "delete": {"tags": ["favorites"], "summary": "Remove a favorite", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/me/listings": {
            "get": {"tags": ["me"], "summary": "List my listings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/me/quota": {
            "get": {"tags": ["me"], "summary": "Get my listing quota", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/notifications": {
            "get": {"tags": ["notifications"], "summary": "List my notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/notifications/read-all": {
            "post": {"tags": ["notifications"], "summary": "Mark all notifications read", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/notifications/{notification_id}/read": {
            "post": {"tags": ["notifications"], "summary": "Mark a notification read", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/admin/moderation/queue": {
            "get": {"tags": ["moderation"], "summary": "List listings awaiting review", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/admin/listings/{listing_id}/approve": {
            "post": {"tags": ["moderation"], "summary": "Approve a listing", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/admin/listings/{listing_id}/reject": {
            "post": {"tags": ["moderation"], "summary": "Reject a listing", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/admin/listings/bulk-approve": {
            "post": {"tags": ["moderation"], "summary": "Approve many listings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/admin/listings/bulk-reject": {
            "post": {"tags": ["moderation"], "summary": "Reject many listings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/admin/audit": {
            "get": {"tags": ["moderation"], "summary": "Read the admin audit log", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Autoboard listing API",
	Description:      "Vehicle classified listings: submission, guest verification, moderation and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
