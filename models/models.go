package models

import (
	"time"

	"gorm.io/datatypes"
)

// Run represents one analysis pass over a workspace
type Run struct {
	ID       uint   `gorm:"primaryKey"`
	RootPath string `gorm:"type:varchar(512);not null"`
	Prefix   string `gorm:"type:varchar(255)"`

	// Statistics
	FileCount    int `gorm:"not null"`
	FindingCount int `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Relationships
	Findings []Finding `gorm:"foreignKey:RunID"`
}

// TableName returns the table name for Run
func (Run) TableName() string {
	return "runs"
}

// Finding represents one diagnostic produced during a run
type Finding struct {
	ID    uint `gorm:"primaryKey"`
	RunID uint `gorm:"index;not null"`

	// Location
	File      string `gorm:"type:varchar(512);not null"`
	StartByte int    `gorm:"not null"`
	EndByte   int    `gorm:"not null"`
	Line      int
	Column    int

	// Diagnostic payload
	Code        string         `gorm:"type:varchar(64);index;not null"`
	Severity    string         `gorm:"type:varchar(10);not null"`
	Message     string         `gorm:"type:text"`
	Explanation string         `gorm:"type:text"`
	QuickFix    datatypes.JSON `gorm:"type:jsonb"` // full quick fix object

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for Finding
func (Finding) TableName() string {
	return "findings"
}
