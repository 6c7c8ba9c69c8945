package entity

import "strings"

// NoImage marks a customer whose profile picture could not be resolved.
const NoImage = "no image"

type Customer struct {
	CustomerID        int64  `json:"customer_id" bson:"customer_id"`
	Name              string `json:"name" bson:"name" validate:"omitempty"`
	PushName          string `json:"push_name" bson:"push_name"`
	ProfilePictureURL string `json:"profile_picture_url" bson:"profile_picture_url"`
	Wuid              string `json:"wuid" bson:"wuid" validate:"required"`
	PhoneNumber       string `json:"phone_number" bson:"phone_number"`
	CreatedAt         int64  `json:"created_at" bson:"created_at"`
	UpdatedAt         int64  `json:"updated_at" bson:"updated_at"`
}

// DisplayName prefers the collected name over the transport push name.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.PushName
}

func (c *Customer) HasImage() bool {
	return c.ProfilePictureURL != "" && c.ProfilePictureURL != NoImage
}

// PhoneFromWuid strips the transport suffix from a wuid.
func PhoneFromWuid(wuid string) string {
	return strings.SplitN(wuid, "@", 2)[0]
}
