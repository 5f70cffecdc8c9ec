// Package docs содержит swagger-спецификацию API, отдаваемую по /docs.
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
    "paths": {
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Регистрация пользователя",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Пользователь создан", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON или email занят", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Авторизация пользователя",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Успешный вход", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/providers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Providers"],
                "summary": "Список провайдеров",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Провайдеры с аватарами", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/files": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Files"],
                "summary": "Загрузить аватар",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Файл сохранен", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Файл не передан или неподдерживаемый тип", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/appointments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Appointments"],
                "summary": "Список записей",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Список записей", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Appointments"],
                "summary": "Создать запись",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateAppointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Запись создана", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации или нарушено правило записи", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Время занято", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/appointments/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Appointments"],
                "summary": "Отменить запись",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Запись отменена", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Чужая запись", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Запись не найдена или уже отменена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Окно отмены истекло", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Запись отменена, письмо не поставлено в очередь", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Notifications"],
                "summary": "Уведомления провайдера",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Уведомления", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Пользователь не провайдер", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "provider": {"type": "boolean"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.CreateAppointmentRequest": {
            "type": "object",
            "required": ["date", "provider_id"],
            "properties": {
                "provider_id": {"type": "integer"},
                "date": {"type": "string", "example": "2030-01-10T14:00:00-03:00"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "invalid request body"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Appointment Scheduler API",
	Description:      "API записи клиентов к провайдерам услуг",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
