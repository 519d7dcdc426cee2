package model

import (
	"time"

	"gorm.io/datatypes"
)

// Tender 招标项目（文档的主体记录），由外部录入，本服务只读
type Tender struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	Title       string             `json:"title" gorm:"size:500;not null"`
	Reference   string             `json:"reference" gorm:"size:255"`
	ClientName  string             `json:"client_name" gorm:"size:255"`
	Budget      float64            `json:"budget"`
	Deadline    *time.Time         `json:"deadline"`
	Status      string             `json:"status" gorm:"size:50;default:open"`
	Description string             `json:"description" gorm:"type:text"`
	Analyses    datatypes.JSON     `json:"analyses" gorm:"type:json"` // AI 对招标文件的分析结果，[]TenderAnalysis
	Attachments []TenderAttachment `json:"attachments,omitempty" gorm:"foreignKey:TenderID"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TenderAttachment 招标附件及其摘录
type TenderAttachment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenderID  uint      `json:"tender_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Excerpt   string    `json:"excerpt" gorm:"type:text"`
	Analysis  string    `json:"analysis" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TenderAnalysis Analyses 字段中的单条分析
type TenderAnalysis struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
