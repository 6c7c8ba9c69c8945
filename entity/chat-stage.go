package entity

// Stage is the conversation cursor for a single customer chat. Every
// inbound customer message is routed by the stage stored here.
type Stage string

const (
	StageInitial      Stage = "initial"
	StageSetName      Stage = "setName"
	StageCheckSector  Stage = "checkSector"
	StageSetSubject   Stage = "setSubject"
	StageTransaction  Stage = "transaction"
	StageFinishedChat Stage = "finishedChat"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageSetName, StageCheckSector, StageSetSubject,
		StageTransaction, StageFinishedChat:
		return true
	}
	return false
}

type ChatStage struct {
	StageID    int64  `json:"stage_id" bson:"stage_id"`
	Wuid       string `json:"wuid" bson:"wuid"`
	Stage      Stage  `json:"stage" bson:"stage"`
	CustomerID int64  `json:"customer_id" bson:"customer_id"`
	UpdatedAt  int64  `json:"updated_at" bson:"updated_at"`
}
