package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoalTime is a per-user target duration for a specific combination of
// distance, stroke, gear set and pool length. It is used as the denominator
// when scaling target times for newly logged swims and when classifying
// achievement zones.
type GoalTime struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"column:user_id;not null;index" json:"userId"`
	Distance   int        `gorm:"column:distance;not null" json:"distance"`
	Stroke     Stroke     `gorm:"column:stroke;not null" json:"stroke"`
	Gear       []Gear     `gorm:"column:gear;serializer:json" json:"gear"`
	PoolLength PoolLength `gorm:"column:pool_length;not null" json:"poolLength"`
	TargetTime float64    `gorm:"column:target_time;not null" json:"targetTime"` // seconds
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (GoalTime) TableName() string { return "goal_times" }

// Matches reports whether this goal applies to the given swim parameters.
// Gear sets must match exactly (order-insensitive).
func (g *GoalTime) Matches(distance int, stroke Stroke, gear []Gear, pool PoolLength) bool {
	if g.Distance != distance || g.Stroke != stroke || g.PoolLength != pool {
		return false
	}
	if len(g.Gear) != len(gear) {
		return false
	}
	for _, want := range gear {
		found := false
		for _, have := range g.Gear {
			if want == have {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
