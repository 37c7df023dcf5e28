package handler

import (
	"abcstore/internal/usecase"
)

var (
	authHandler    *AuthHandler
	productHandler *ProductHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	productUseCase *usecase.ProductUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	productHandler = NewProductHandler(productUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}
