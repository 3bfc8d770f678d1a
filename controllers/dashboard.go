package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// DashboardController aggregates counts for the admin landing page.
type DashboardController struct {
	stats *services.StatsService
	hub   *websocket.Hub
}

func NewDashboardController(hub *websocket.Hub) *DashboardController {
	return &DashboardController{
		stats: services.NewStatsService(),
		hub:   hub,
	}
}

// GetStats returns workflow counts plus live dashboard connections
// GET /api/dashboard/stats
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	stats, err := dc.stats.Collect()
	if err != nil {
		return respondError(c, err)
	}

	connected := 0
	if dc.hub != nil {
		connected = dc.hub.ClientCount()
	}

	return c.JSON(fiber.Map{
		"stats":             stats,
		"connected_clients": connected,
	})
}
