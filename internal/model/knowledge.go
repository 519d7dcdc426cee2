package model

import "time"

const (
	ExtractionPending    = "pending"
	ExtractionProcessing = "processing"
	ExtractionCompleted  = "completed"
	ExtractionFailed     = "failed"
)

// KnowledgeFile 知识库文件（历史标书、公司资料），文本抽取由外部完成
type KnowledgeFile struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	Size             int64     `json:"size"`
	ExtractedText    string    `json:"extracted_text" gorm:"type:longtext"`
	ExtractionStatus string    `json:"extraction_status" gorm:"size:20;default:pending;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Asset 图片素材，上传与描述生成不在本服务范围内
type Asset struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	ObjectKey     string    `json:"object_key" gorm:"size:500;not null"`
	ContentType   string    `json:"content_type" gorm:"size:100"`
	AIDescription string    `json:"ai_description" gorm:"column:ai_description;type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
