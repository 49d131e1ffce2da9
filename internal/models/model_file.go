package models

import "time"

// File is one uploaded asset of a product. FileSizeBytes feeds the store's
// storage counter on create/delete; the bytes themselves live in external
// object storage addressed by FilePath.
type File struct {
	ID            string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID     string    `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	FileName      string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	FilePath      string    `gorm:"column:file_path;type:varchar(1024);not null" json:"file_path"`
	FileType      *string   `gorm:"column:file_type;type:varchar(50)" json:"file_type"`
	FileSizeBytes int64     `gorm:"column:file_size_bytes;type:bigint;not null" json:"file_size_bytes"`
	DisplayName   *string   `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (File) TableName() string { return "file" }
