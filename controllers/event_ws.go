package controller

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"ziraweb/models"
)

// HandleEventFeedWS streams new email events to the admin dashboard. The
// client sends its last-seen event id (0 for "only new ones"); the handler
// polls for newer rows and pushes them until the connection drops.
func HandleEventFeedWS(db *gorm.DB) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		var input struct {
			LastEventID uint `json:"last_event_id"`
		}
		if err := c.ReadJSON(&input); err != nil {
			log.Printf("event feed: error reading JSON: %v", err)
			return
		}

		lastID := input.LastEventID
		if lastID == 0 {
			var latest models.EmailEvent
			if err := db.Order("id DESC").First(&latest).Error; err == nil {
				lastID = latest.ID
			}
		}

		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			var events []models.EmailEvent
			if err := db.Where("id > ?", lastID).Order("id ASC").Limit(50).Find(&events).Error; err != nil {
				log.Printf("event feed: query error: %v", err)
				return
			}

			for _, ev := range events {
				if err := c.WriteJSON(ev); err != nil {
					return
				}
				lastID = ev.ID
			}
		}
	}
}
