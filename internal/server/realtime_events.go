package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"larder/internal/models"
	"larder/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventRecipeCreated = "recipe_created"
	EventRecipeUpdated = "recipe_updated"
	EventRecipeDeleted = "recipe_deleted"
)

// publishFeedEvent fans an event out to local WebSocket watchers and, via
// Redis pub/sub, to every other instance's watchers.
func (s *Server) publishFeedEvent(eventType string, payload map[string]interface{}) {
	observability.RecipeEvents.WithLabelValues(eventType).Inc()

	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	// The Redis subscription loops the published message back to this
	// instance's hub, so publishing AND broadcasting locally would deliver
	// every event twice. Broadcast directly only when no notifier is wired.
	if s.notifier != nil {
		if err := s.notifier.PublishFeed(context.Background(), message); err != nil {
			log.Printf("failed to publish %s feed event: %v", eventType, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}

func recipeSummary(recipe *models.Recipe) map[string]interface{} {
	return map[string]interface{}{
		"recipe_id":   recipe.ID,
		"title":       recipe.Title,
		"author_id":   recipe.UserID,
		"author_name": recipe.AuthorName,
		"image_url":   recipe.ImageURL,
		"tags":        recipe.Tags,
		"updated_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
}
