package model

import "time"

// Document 招标响应文档，每个招标项目一份
type Document struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenderID     uint      `json:"tender_id" gorm:"uniqueIndex;not null"`
	Title        string    `json:"title" gorm:"size:500;not null"`
	Reference    string    `json:"reference" gorm:"size:255"`
	ClientName   string    `json:"client_name" gorm:"size:255"`
	Instructions string    `json:"instructions" gorm:"type:text"` // 文档级生成指令
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SectionRow 章节内容的持久化投影，(document_id, section_key) 唯一
type SectionRow struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	DocumentID          uint      `json:"document_id" gorm:"uniqueIndex:idx_section_rows_doc_key;not null"`
	SectionKey          string    `json:"section_key" gorm:"size:100;uniqueIndex:idx_section_rows_doc_key;not null"`
	Title               string    `json:"title" gorm:"size:255;not null"`
	Content             string    `json:"content" gorm:"type:text"`
	Disabled            bool      `json:"disabled" gorm:"default:false"`
	InstructionOverride string    `json:"instruction_override" gorm:"type:text"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SectionRow) TableName() string {
	return "section_rows"
}
