// Package docs 由swag根据handler注释生成,修改接口注释后执行 swag init -g cmd/api/main.go
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
		"/api/v1/books": {
			"get": {
				"tags": [
					"图书"
				],
				"summary": "图书列表",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"name": "page_size",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"name": "keyword",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"name": "sort_by",
						"in": "query",
						"required": false
					}
				]
			}
		},
		"/api/v1/books/{id}/availability": {
			"get": {
				"tags": [
					"图书"
				],
				"summary": "馆藏状态",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/cart": {
			"get": {
				"tags": [
					"借书车"
				],
				"summary": "查看借书车",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"借书车"
				],
				"summary": "清空借书车",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/cart/items": {
			"post": {
				"tags": [
					"借书车"
				],
				"summary": "加入借书车",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.AddCartItemRequest"
						}
					}
				]
			}
		},
		"/api/v1/cart/items/{book_id}": {
			"put": {
				"tags": [
					"借书车"
				],
				"summary": "修改借书车数量",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "book_id",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateCartItemRequest"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"借书车"
				],
				"summary": "删除借书车条目",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "book_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/borrows": {
			"post": {
				"tags": [
					"借阅"
				],
				"summary": "结算",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CheckoutRequest"
						}
					}
				]
			},
			"get": {
				"tags": [
					"借阅"
				],
				"summary": "我的借阅单",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"name": "page_size",
						"in": "query",
						"required": false
					}
				]
			}
		},
		"/api/v1/borrows/{id}": {
			"get": {
				"tags": [
					"借阅"
				],
				"summary": "借阅单详情",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/borrows/{id}/cancel": {
			"post": {
				"tags": [
					"借阅"
				],
				"summary": "取消借阅",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/desk/borrows/lookup": {
			"get": {
				"tags": [
					"服务台"
				],
				"summary": "服务台按单号查询",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "ticket_no",
						"in": "query",
						"required": true
					}
				]
			}
		},
		"/api/v1/desk/borrows/{id}/confirm": {
			"post": {
				"tags": [
					"服务台"
				],
				"summary": "确认取书",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/desk/borrows/{id}/return": {
			"post": {
				"tags": [
					"服务台"
				],
				"summary": "归还",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/auth/logout": {
			"post": {
				"tags": [
					"认证"
				],
				"summary": "注销",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"response.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {}
			}
		},
		"dto.AddCartItemRequest": {
			"type": "object",
			"required": [
				"book_id",
				"quantity"
			],
			"properties": {
				"book_id": {
					"type": "integer",
					"example": 1
				},
				"quantity": {
					"type": "integer",
					"minimum": 1,
					"maximum": 99,
					"example": 1
				}
			}
		},
		"dto.UpdateCartItemRequest": {
			"type": "object",
			"required": [
				"quantity"
			],
			"properties": {
				"quantity": {
					"type": "integer",
					"minimum": 0,
					"maximum": 99,
					"example": 2
				}
			}
		},
		"dto.CheckoutItemRequest": {
			"type": "object",
			"required": [
				"book_id",
				"quantity"
			],
			"properties": {
				"book_id": {
					"type": "integer",
					"example": 1
				},
				"quantity": {
					"type": "integer",
					"minimum": 1,
					"maximum": 99,
					"example": 1
				}
			}
		},
		"dto.CheckoutRequest": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.CheckoutItemRequest"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "图书馆借阅服务API",
	Description:      "借书车、结算预约、到馆取书与归还",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
