// Package main book rental API.
//
// @title           Book Rental System API
// @version         1.0
// @description     Book rental backend (accounts, catalog, rentals, dashboard).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import "github.com/ahmed2231web/Book-Rental-System/cmd"

func main() {
	cmd.Execute()
}
