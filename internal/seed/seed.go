package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/importer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type courseSeed struct {
	course  domain.Course
	lessons []string
}

func demoCourses() []courseSeed {
	return []courseSeed{
		{
			course: domain.Course{
				Key:           "iot-foundations",
				Title:         "IoT Foundations",
				Description:   "Sensors, microcontrollers and your first connected device.",
				Price:         decimal.RequireFromString("49.99"),
				Instructor:    "Mari Tamm",
				DurationHours: 8,
				Difficulty:    domain.DifficultyBeginner,
				Active:        true,
			},
			lessons: []string{"What is IoT", "Reading a sensor", "Sending data over Wi-Fi"},
		},
		{
			course: domain.Course{
				Key:           "mqtt-in-practice",
				Title:         "MQTT in Practice",
				Description:   "Brokers, topics and QoS for device fleets.",
				Price:         decimal.RequireFromString("79.00"),
				Instructor:    "Jaan Kask",
				DurationHours: 12,
				Difficulty:    domain.DifficultyIntermediate,
				Active:        true,
			},
			lessons: []string{"Broker setup", "Topic design", "Retained messages and QoS"},
		},
		{
			course: domain.Course{
				Key:           "edge-ml",
				Title:         "Machine Learning at the Edge",
				Description:   "Run small models on constrained hardware.",
				Price:         decimal.RequireFromString("129.00"),
				Instructor:    "Liis Saar",
				DurationHours: 20,
				Difficulty:    domain.DifficultyAdvanced,
				Active:        true,
			},
			lessons: []string{"Quantisation", "Deploying to a microcontroller"},
		},
	}
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{Key: "dht22", Name: "DHT22 Temperature Sensor", Description: "Digital temperature and humidity sensor.", Price: decimal.RequireFromString("7.50"), Category: domain.CategorySensors, StockQuantity: 40, Active: true},
		{Key: "esp32-devkit", Name: "ESP32 DevKit", Description: "Dual-core board with Wi-Fi and Bluetooth.", Price: decimal.RequireFromString("12.99"), Category: domain.CategoryBoards, StockQuantity: 25, Active: true},
		{Key: "relay-4ch", Name: "4-Channel Relay Module", Description: "Switch mains loads from 3.3V logic.", Price: decimal.RequireFromString("9.90"), Category: domain.CategoryModules, StockQuantity: 15, Active: true},
		{Key: "starter-kit", Name: "IoT Starter Kit", Description: "Board, sensors and jumper wires in one box.", Price: decimal.RequireFromString("59.00"), Category: domain.CategoryKits, StockQuantity: 5, Active: true},
		{Key: "jumper-wires", Name: "Jumper Wire Set", Description: "120 assorted jumper wires.", Price: decimal.RequireFromString("4.20"), Category: domain.CategoryAccessories, StockQuantity: 0, Active: true},
	}
}

// Apply upserts demo catalog data for manual testing. It is idempotent: rows
// are keyed by catalog key and lessons by position.
func Apply(ctx context.Context, courses importer.CourseWriter, products importer.ProductWriter, logger *zap.Logger) error {
	for _, cs := range demoCourses() {
		saved, err := courses.Upsert(ctx, cs.course)
		if err != nil {
			return fmt.Errorf("upsert course %s: %w", cs.course.Key, err)
		}
		for i, title := range cs.lessons {
			l := domain.Lesson{CourseID: saved.ID, Title: title, Position: i + 1}
			if _, err := courses.UpsertLesson(ctx, l); err != nil {
				return fmt.Errorf("upsert lesson %d of %s: %w", i+1, cs.course.Key, err)
			}
		}
	}

	for _, p := range demoProducts() {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	if logger != nil {
		logger.Info("seed: catalog applied", zap.Int("courses", len(demoCourses())), zap.Int("products", len(demoProducts())))
	}
	return nil
}
