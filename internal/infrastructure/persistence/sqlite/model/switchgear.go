package model

type Switchgear struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	InspectionColumns `gorm:"embedded"`
}

func (Switchgear) TableName() string {
	return "switchgear"
}
