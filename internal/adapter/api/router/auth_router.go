package router

import (
	"github.com/labstack/echo/v4"

	"abcstore/internal/adapter/api/handler"
	"abcstore/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/api/auth")
	auth.POST("/sign-up", authHandler.SignUp)
	auth.POST("/sign-in", authHandler.SignIn)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)
}
