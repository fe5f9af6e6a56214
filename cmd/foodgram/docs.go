package main

// @title Foodgram API
// @version 1.0
// @description Recipe sharing service: recipes, favourites, shopping lists and subscriptions.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Token" or "Bearer" followed by a space and the JWT.

// @tag.name Auth
// @tag.description Token endpoints

// @tag.name Users
// @tag.description User accounts

// @tag.name Subscriptions
// @tag.description Following authors

// @tag.name Recipes
// @tag.description Recipe catalogue and shopping list download

// @tag.name Favorites
// @tag.description Per-user favourites

// @tag.name Shopping cart
// @tag.description Per-user shopping cart

// @tag.name Tags
// @tag.description Recipe tags

// @tag.name Units
// @tag.description Measurement units

// @tag.name Ingredients
// @tag.description Ingredient catalogue

// @tag.name Health
// @tag.description Health check endpoints
