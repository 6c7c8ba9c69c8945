package entity

import "strings"

type Sector struct {
	SectorID     int64  `json:"sector_id" bson:"sector_id"`
	Name         string `json:"name" bson:"name" validate:"required"`
	CallCenterID int64  `json:"call_center_id" bson:"call_center_id"`
	CreatedAt    int64  `json:"created_at" bson:"created_at"`
}

// Matches compares sector names case-insensitively, the way customers
// type them in chat.
func (s *Sector) Matches(name string) bool {
	return strings.EqualFold(s.Name, strings.TrimSpace(name))
}
