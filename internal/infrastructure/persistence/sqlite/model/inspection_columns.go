package model

// InspectionColumns are shared by switchgear and pending_switchgear.
type InspectionColumns struct {
	FunctionalLocation string   `gorm:"column:functional_location;type:text;not null;index"`
	ReportDate         *string  `gorm:"column:report_date;type:text"`
	DefectFrom         string   `gorm:"column:defect_from;type:text;not null;default:''"`
	TEVReading         *float64 `gorm:"column:tev_us_in_db;type:real"`
	HotspotDeltaT      *float64 `gorm:"column:hotspot_delta_t_in_c;type:real"`
	SwitchgearType     string   `gorm:"column:switchgear_type;type:text;not null;default:''"`
	SwitchgearBrand    string   `gorm:"column:switchgear_brand;type:text;not null;default:''"`
	SubstationName     string   `gorm:"column:substation_name;type:text;not null;default:''"`
	DefectDescription1 string   `gorm:"column:defect_description_1;type:text;not null;default:''"`
	DefectDescription2 string   `gorm:"column:defect_description_2;type:text;not null;default:''"`
	DefectOwner        string   `gorm:"column:defect_owner;type:text;not null;default:''"`
	Latitude           *float64 `gorm:"column:latitude;type:real"`
	Longitude          *float64 `gorm:"column:longitude;type:real"`
	Status             string   `gorm:"column:status;type:text;not null;index"`
	CreatedAt          string   `gorm:"column:created_at;type:text;not null"`
	UpdatedAt          string   `gorm:"column:updated_at;type:text;not null"`
}
