package entity

type AttendantStatus string

const (
	AttendantActive   AttendantStatus = "ACTIVE"
	AttendantInactive AttendantStatus = "INACTIVE"
)

type Attendant struct {
	AttendantID     int64           `json:"attendant_id" bson:"attendant_id"`
	ShortName       string          `json:"short_name" bson:"short_name" validate:"required"`
	FullName        string          `json:"full_name" bson:"full_name" validate:"omitempty"`
	PhoneNumber     string          `json:"phone_number" bson:"phone_number" validate:"required"`
	Wuid            string          `json:"wuid" bson:"wuid" validate:"required"`
	Email           string          `json:"email" bson:"email" validate:"omitempty,email"`
	Status          AttendantStatus `json:"status" bson:"status" validate:"required,oneof=ACTIVE INACTIVE"`
	Manager         bool            `json:"manager" bson:"manager"`
	CompanySectorID int64           `json:"company_sector_id" bson:"company_sector_id" validate:"required"`
	CallCenterID    int64           `json:"call_center_id" bson:"call_center_id"`
	CreatedAt       int64           `json:"created_at" bson:"created_at"`
	UpdatedAt       int64           `json:"updated_at" bson:"updated_at"`
}

func (a *Attendant) IsActive() bool {
	return a.Status == AttendantActive
}
