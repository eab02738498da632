package model

type PendingSwitchgear struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	InspectionColumns `gorm:"embedded"`
}

func (PendingSwitchgear) TableName() string {
	return "pending_switchgear"
}
