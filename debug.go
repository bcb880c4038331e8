package eraconsole

import (
	"time"

	"github.com/sirupsen/logrus"
)

// frameStats holds per-frame timing and layout metrics.
// Only populated when Game.debug is true.
type frameStats struct {
	drawTime    time.Duration
	overlayTime time.Duration
	entries     int
	regions     int
	textures    int
}

// debugLog writes timing and layout stats at debug level.
func (g *Game) debugLog(stats frameStats) {
	if !g.debug {
		return
	}
	Named("frame").WithFields(logrus.Fields{
		"draw":     stats.drawTime,
		"overlay":  stats.overlayTime,
		"total":    stats.drawTime + stats.overlayTime,
		"entries":  stats.entries,
		"regions":  stats.regions,
		"textures": stats.textures,
	}).Debug("frame")
}
