package model

type ApprovalLog struct {
	ID                 uint64   `gorm:"column:id;primaryKey;autoIncrement"`
	Action             string   `gorm:"column:action;type:text;not null;index"`
	Message            string   `gorm:"column:message;type:text;not null;default:''"`
	FunctionalLocation string   `gorm:"column:functional_location;type:text;not null;index"`
	TEVReading         *float64 `gorm:"column:tev_us_in_db;type:real"`
	HotspotDeltaT      *float64 `gorm:"column:hotspot_delta_t_in_c;type:real"`
	Approver           string   `gorm:"column:approver;type:text;not null"`
	Timestamp          string   `gorm:"column:timestamp;type:text;not null;index"`
}

func (ApprovalLog) TableName() string {
	return "approval_log"
}
