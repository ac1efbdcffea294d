// Package docs registers the OpenAPI document served under /swagger.
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
        "/users": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterParams"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/auth": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Auth"],
                "summary": "Get the authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginParams"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "List posts, newest first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Create a post",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreatePostParams"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Get a post by id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Delete own post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts/like/{id}": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Like a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Like"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts/unlike/{id}": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Remove own like from a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Like"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts/comment/{id}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreatePostParams"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/posts/{id}/{commentId}": {
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Posts"],
                "summary": "Delete own comment",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "commentId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Profiles"],
                "summary": "List all profiles",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProfileList"}}}
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Create or update the caller's profile",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpsertProfileParams"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Delete the caller's posts, profile and account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/profile/me": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Get the caller's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/profile/user/{id}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get a user's profile",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/profile/experience": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Add an experience entry",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ExperienceParams"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}}}
            }
        },
        "/profile/experience/{id}": {
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Remove an experience entry",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}}}
            }
        },
        "/profile/education": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Add an education entry",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.EducationParams"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}}}
            }
        },
        "/profile/education/{id}": {
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Profiles"],
                "summary": "Remove an education entry",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Profile"}}}
            }
        },
        "/profile/github/{username}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "List a GitHub user's latest repositories",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        }
    },
    "definitions": {
        "api.Response": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "msg": {}}
        },
        "types.RegisterParams": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "types.LoginParams": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "types.TokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "types.CreatePostParams": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "types.Like": {
            "type": "object",
            "properties": {"_id": {"type": "string"}, "user": {"type": "string"}}
        },
        "types.UpsertProfileParams": {
            "type": "object",
            "properties": {
                "company": {"type": "string"}, "website": {"type": "string"}, "location": {"type": "string"},
                "bio": {"type": "string"}, "status": {"type": "string"}, "githubusername": {"type": "string"},
                "skills": {"type": "string"}, "youtube": {"type": "string"}, "twitter": {"type": "string"},
                "facebook": {"type": "string"}, "linkedin": {"type": "string"}, "instagram": {"type": "string"}
            }
        },
        "types.ExperienceParams": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}, "company": {"type": "string"}, "location": {"type": "string"},
                "from": {"type": "string"}, "to": {"type": "string"}, "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "types.EducationParams": {
            "type": "object",
            "properties": {
                "school": {"type": "string"}, "degree": {"type": "string"}, "fieldofstudy": {"type": "string"},
                "from": {"type": "string"}, "to": {"type": "string"}, "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "types.Profile": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"}, "user": {"type": "object"}, "company": {"type": "string"},
                "website": {"type": "string"}, "location": {"type": "string"}, "bio": {"type": "string"},
                "status": {"type": "string"}, "githubusername": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}}, "social": {"type": "object"},
                "experience": {"type": "array", "items": {"type": "object"}},
                "education": {"type": "array", "items": {"type": "object"}}, "date": {"type": "string"}
            }
        },
        "types.ProfileList": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}, "count": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/types.Profile"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "x-auth-token", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "DevConnector API",
	Description:      "Developer profiles, posts, likes and comments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
