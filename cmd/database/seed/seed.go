package seed

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodgram-backend/entities"
)

// SeedIngredients loads catalog fixtures from a CSV of "name,measurement_unit"
// rows. Malformed rows and rows that collide with existing data are logged and
// skipped; ingestion keeps going. Units are created on first sight.
func SeedIngredients(db *gorm.DB, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	units := make(map[string]uuid.UUID)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("skipping malformed ingredient row: %v", err)
			continue
		}
		if len(record) < 2 || record[0] == "" || record[1] == "" {
			log.Printf("skipping incomplete ingredient row: %v", record)
			continue
		}
		name, unitName := record[0], record[1]

		unitID, ok := units[unitName]
		if !ok {
			var unit entities.Unit
			err := db.Where("name = ?", unitName).First(&unit).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unit = entities.Unit{ID: uuid.New(), Name: unitName}
				err = db.Create(&unit).Error
			}
			if err != nil {
				log.Printf("skipping ingredient %q: unit %q: %v", name, unitName, err)
				continue
			}
			unitID = unit.ID
			units[unitName] = unitID
		}

		ingredient := entities.Ingredient{
			ID:     uuid.New(),
			Name:   name,
			UnitID: unitID,
		}
		if err := db.Create(&ingredient).Error; err != nil {
			log.Printf("skipping ingredient %q: %v", name, err)
		}
	}
	return nil
}

// SeedTags loads tag fixtures from a CSV of "name,color,slug" rows.
func SeedTags(db *gorm.DB, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("skipping malformed tag row: %v", err)
			continue
		}
		if len(record) < 3 {
			log.Printf("skipping incomplete tag row: %v", record)
			continue
		}

		tag := entities.Tag{
			ID:    uuid.New(),
			Name:  record[0],
			Color: record[1],
			Slug:  record[2],
		}
		if err := db.Create(&tag).Error; err != nil {
			log.Printf("skipping tag %q: %v", tag.Name, err)
		}
	}
	return nil
}
