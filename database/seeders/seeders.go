package seeders

import (
	"log"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedAcademicSessions()
	SeedClasses()
	SeedSections()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the default operator accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	// Hash the default password
	hashedPassword, _ := utils.HashPassword("password123")

	users := []models.User{
		{
			Username: "owner",
			Password: hashedPassword,
			Email:    "owner@arabiaislamia.edu.pk",
			Phone:    "03001234567",
			Role:     "owner",
			Status:   "active",
		},
		{
			Username: "admin",
			Password: hashedPassword,
			Email:    "admin@arabiaislamia.edu.pk",
			Phone:    "03001234568",
			Role:     "admin",
			Status:   "active",
		},
		{
			Username: "registrar",
			Password: hashedPassword,
			Email:    "registrar@arabiaislamia.edu.pk",
			Phone:    "03001234569",
			Role:     "registrar",
			Status:   "active",
		},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedAcademicSessions seeds the current academic session
func SeedAcademicSessions() {
	var count int64
	database.DB.Model(&models.AcademicSession{}).Count(&count)
	if count > 0 {
		log.Println("Academic sessions already seeded, skipping...")
		return
	}

	sessions := []models.AcademicSession{
		{
			Name:      "2025-2026",
			StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
		},
		{
			Name:      "2026-2027",
			StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
			IsActive:  false,
		},
	}

	for _, s := range sessions {
		if err := database.DB.Create(&s).Error; err != nil {
			log.Printf("Error seeding academic session %s: %v", s.Name, err)
		}
	}

	log.Println("Academic sessions seeded successfully")
}

// SeedClasses seeds the madrasa class ladder
func SeedClasses() {
	var count int64
	database.DB.Model(&models.Class{}).Count(&count)
	if count > 0 {
		log.Println("Classes already seeded, skipping...")
		return
	}

	classes := []models.Class{
		{Name: "Hifz", SortOrder: 1},
		{Name: "Darja Oola", SortOrder: 2},
		{Name: "Darja Saniya", SortOrder: 3},
		{Name: "Darja Salisa", SortOrder: 4},
		{Name: "Darja Rabia", SortOrder: 5},
		{Name: "Darja Khamisa", SortOrder: 6},
		{Name: "Darja Sadisa", SortOrder: 7},
		{Name: "Daura-e-Hadith", SortOrder: 8},
	}

	for _, c := range classes {
		if err := database.DB.Create(&c).Error; err != nil {
			log.Printf("Error seeding class %s: %v", c.Name, err)
		}
	}

	log.Println("Classes seeded successfully")
}

// SeedSections seeds two sections per class
func SeedSections() {
	var count int64
	database.DB.Model(&models.Section{}).Count(&count)
	if count > 0 {
		log.Println("Sections already seeded, skipping...")
		return
	}

	var classes []models.Class
	if err := database.DB.Order("sort_order").Find(&classes).Error; err != nil {
		log.Printf("Error loading classes for section seeding: %v", err)
		return
	}

	for _, c := range classes {
		sections := []models.Section{
			{ClassID: c.ID, Name: "A", SortOrder: 1},
			{ClassID: c.ID, Name: "B", SortOrder: 2},
		}
		for _, s := range sections {
			if err := database.DB.Create(&s).Error; err != nil {
				log.Printf("Error seeding section %s-%s: %v", c.Name, s.Name, err)
			}
		}
	}

	log.Println("Sections seeded successfully")
}
