package main

import (
	"log"
	"time"

	"github.com/quocanhngo/agrosynth/internal/config"
	"github.com/quocanhngo/agrosynth/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Alerts are seeded under a fixed device id so the demo device can list and delete them.
const demoDeviceID = "demo-device-0001"

type seedAlert struct {
	name        string
	description string
	weatherType model.WeatherType
	location    string
	lat, lng    float64
	age         time.Duration
}

var demoAlerts = []seedAlert{
	{"Flood Watch", "Water over the curb on Van Brunt St, drains backing up.", model.WeatherFlood, "Red Hook, Brooklyn", 40.6755, -74.0110, 30 * time.Minute},
	{"Heat Stress", "Leaves wilting by noon, irrigation can't keep up.", model.WeatherHeatwave, "Queens County Farm", 40.7470, -73.7225, 2 * time.Hour},
	{"Hail Damage", "Pea-sized hail for ten minutes, tomato plants shredded.", model.WeatherHailstorm, "Staten Island Greenbelt", 40.5890, -74.1390, 5 * time.Hour},
	{"Aphid Swarm", "Heavy aphid presence on kale beds.", model.WeatherPests, "Brooklyn Grange, Navy Yard", 40.7020, -73.9690, 26 * time.Hour},
	{"Strong Gusts", "Row covers torn loose along the east fence.", model.WeatherWind, "Randall's Island Urban Farm", 40.7930, -73.9210, 30 * time.Hour},
	{"Steady Rain", "Light but steady rain since dawn.", model.WeatherRain, "Central Park North Meadow", 40.7960, -73.9560, 50 * time.Hour},
}

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	if err := db.AutoMigrate(&model.AlertRecord{}, &model.Subscription{}); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}

	log.Printf("🌱 Seeding %d alerts for device %s...", len(demoAlerts), demoDeviceID)
	now := time.Now().UTC()
	for _, s := range demoAlerts {
		var count int64
		db.Model(&model.AlertRecord{}).
			Where("device_id = ? AND name = ?", demoDeviceID, s.name).
			Count(&count)
		if count > 0 {
			continue
		}

		lat, lng := s.lat, s.lng
		alert := model.AlertRecord{
			DeviceID:    demoDeviceID,
			Name:        s.name,
			Description: s.description,
			WeatherType: s.weatherType,
			Location:    s.location,
			Lat:         &lat,
			Lng:         &lng,
			CreatedAt:   now.Add(-s.age),
		}
		if err := db.Create(&alert).Error; err != nil {
			log.Printf("❌ Failed to create alert %q: %v", s.name, err)
			continue
		}
		log.Printf("✅ Created alert: %s | %s | %s", alert.Name, alert.WeatherType, alert.Location)
	}

	log.Println("🎉 Seeding completed!")
}
