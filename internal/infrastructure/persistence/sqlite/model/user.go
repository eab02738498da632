package model

type User struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `gorm:"column:name;type:text;not null"`
	Email        string `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash;type:text;not null"`
	CreatedAt    string `gorm:"column:created_at;type:text;not null"`
}

func (User) TableName() string {
	return "users"
}
