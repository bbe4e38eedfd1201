// Package docs NoteSync API
//
// @title  NoteSync API
// @version 0.1.0
// @description Notes with categories, tags and favorites, an activity feed and live updates.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

//go:generate swag init -g docs/swagger.go -d ../ -o . --parseInternal --outputTypes go
