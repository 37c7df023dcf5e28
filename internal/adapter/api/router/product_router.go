package router

import (
	"github.com/labstack/echo/v4"

	"abcstore/internal/adapter/api/handler"
	"abcstore/internal/adapter/api/middleware"
)

func SetupProductRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	productHandler := handler.GetProductHandler()

	products := e.Group("/api/products")
	products.Use(authMiddleware.Authenticate)

	products.GET("", productHandler.ListProducts)
	products.POST("", productHandler.CreateProduct)
	products.POST("/bulk-delete", productHandler.BulkDelete)
	products.POST("/download-pdf", productHandler.DownloadPDF)
	products.POST("/download-all-pdf", productHandler.DownloadAllPDF)
	products.POST("/download-csv", productHandler.DownloadCSV)
	products.GET("/uploaders", productHandler.ListUploaders, adminMiddleware.AdminOnly)
	products.GET("/:id", productHandler.GetProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)
}
