package consumer

import (
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// catalogEvent is the slice of the Event Catalog's message this service
// cares about. Capacity fields are owned locally and never synced.
type catalogEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatorID string `json:"creator_id"`
}

type CatalogConsumer struct {
	db *gorm.DB
}

func NewCatalogConsumer(db *gorm.DB) *CatalogConsumer {
	return &CatalogConsumer{db: db}
}

// Start listens for catalog messages and upserts event metadata.
func (cc *CatalogConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(msg)
		}
		log.Println("[CatalogConsumer] channel closed, stopping consumer")
	}()
}

func (cc *CatalogConsumer) handleMessage(msg amqp.Delivery) {
	var ev catalogEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		log.Printf("[CatalogConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if ev.ID == "" {
		log.Printf("[CatalogConsumer] dropping message without event id")
		msg.Nack(false, false)
		return
	}

	record := models.Event{
		ID:           ev.ID,
		Name:         ev.Name,
		CreatorID:    ev.CreatorID,
		CapacityMode: models.CapacityUnlimited,
	}
	// Metadata-only upsert: occupancy and capacity columns stay untouched.
	result := cc.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":       ev.Name,
			"creator_id": ev.CreatorID,
			"updated_at": time.Now(),
		}),
	}).Create(&record)

	if result.Error != nil {
		log.Printf("[CatalogConsumer] failed to upsert event %s: %v", ev.ID, result.Error)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[CatalogConsumer] synced event %s: %s", ev.ID, ev.Name)
	msg.Ack(false)
}
