package router

import (
	"github.com/labstack/echo/v4"

	"abcstore/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, uploadDir string) {
	SetupAuthRouter(e, authMiddleware)
	SetupProductRouter(e, authMiddleware, adminMiddleware)

	// Stored assets are public once their URL is known.
	e.Static("/uploads/products", uploadDir)
}
