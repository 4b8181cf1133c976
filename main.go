package main

import (
	"flag"
	"log"

	"foodgram-backend/cmd/config"
	migration "foodgram-backend/cmd/database/migrate"
	"foodgram-backend/cmd/database/seed"
	"foodgram-backend/internal/utils"
)

func main() {
	ingredientsCSV := flag.String("seed-ingredients", "", "path to ingredients fixture CSV")
	tagsCSV := flag.String("seed-tags", "", "path to tags fixture CSV")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if *ingredientsCSV != "" {
		if err := seed.SeedIngredients(db, *ingredientsCSV); err != nil {
			log.Fatalf("failed to seed ingredients: %v", err)
		}
	}
	if *tagsCSV != "" {
		if err := seed.SeedTags(db, *tagsCSV); err != nil {
			log.Fatalf("failed to seed tags: %v", err)
		}
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
