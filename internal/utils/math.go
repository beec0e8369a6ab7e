package utils

import (
	"math"

	"github.com/besuhoff/dark-ritual-go/internal/config"
)

// Collision detection helpers
func CheckRectCollision(x1, y1, w1, h1, x2, y2, w2, h2 float64) bool {
	return x1 < x2+w2 && x1+w1 > x2 && y1 < y2+h2 && y1+h1 > y2
}

func ChunkXYFromPosition(posX, posY float64) (int, int) {
	chunkSize := config.ChunkSize
	return int(math.Floor(posX / chunkSize)), int(math.Floor(posY / chunkSize))
}

// StepToward moves (x, y) by speed in the direction of (tx, ty). The point
// stays put when it is already within stopDistance of the target, which also
// covers the zero-distance case.
func StepToward(x, y, tx, ty, speed, stopDistance float64) (float64, float64) {
	dx := tx - x
	dy := ty - y
	distance := math.Sqrt(dx*dx + dy*dy)
	if distance <= stopDistance || distance == 0 {
		return x, y
	}
	return x + dx/distance*speed, y + dy/distance*speed
}

// OrbitPoint returns the point at angle (radians) on a circle around (cx, cy).
func OrbitPoint(cx, cy, radius, angle float64) (float64, float64) {
	return cx + math.Cos(angle)*radius, cy + math.Sin(angle)*radius
}
