package api

import (
	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, router Router, cookie auth.CookieConfig) *routeHandlers {
	projects := services.NewProjectService(database)
	users := services.NewUserService(database, router.hasher, router.tokens, router.avatars)
	tags := services.NewTagService(database)

	return &routeHandlers{
		projectHandler: newProjectHandler(projects),
		commentHandler: newCommentHandler(projects),
		userHandler:    newUserHandler(users, projects, cookie),
		tagHandler:     newTagHandler(tags),
		healthHandler:  newHealthHandler(database, router.startupTime),
	}
}
