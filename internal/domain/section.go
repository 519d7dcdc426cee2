package domain

import (
	"errors"
	"regexp"
	"strings"
)

// GenerationState 章节生成状态，仅存在于内存中
type GenerationState string

const (
	StateIdle       GenerationState = "idle"
	StateGenerating GenerationState = "generating"
	StateGenerated  GenerationState = "generated"
	StateFailed     GenerationState = "failed"
)

// 错误定义
var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyContent     = errors.New("empty content")
)

// Section 文档中可独立生成、渲染的最小单元
type Section struct {
	Key                 string          `json:"key"`
	Title               string          `json:"title"`
	Icon                string          `json:"icon"`
	DefaultInstructions string          `json:"default_instructions"`
	InstructionOverride string          `json:"instruction_override"`
	Content             string          `json:"content"`
	Enabled             bool            `json:"enabled"`
	State               GenerationState `json:"state"`
	Error               string          `json:"error,omitempty"`
}

// Instructions 返回实际使用的章节指令，覆盖值优先
func (s Section) Instructions() string {
	if strings.TrimSpace(s.InstructionOverride) != "" {
		return s.InstructionOverride
	}
	return s.DefaultInstructions
}

// HasContent 内容非空即视为已生成
func (s Section) HasContent() bool {
	return strings.TrimSpace(s.Content) != ""
}

// StateFromContent 根据持久化内容推导加载后的状态，generating 永不落库
func StateFromContent(content string) GenerationState {
	if strings.TrimSpace(content) != "" {
		return StateGenerated
	}
	return StateIdle
}

// Document 一个招标项目对应的章节集合
type Document struct {
	ID           uint      `json:"id"`
	TenderID     uint      `json:"tender_id"`
	Title        string    `json:"title"`
	Reference    string    `json:"reference"`
	ClientName   string    `json:"client_name"`
	Instructions string    `json:"instructions"`
	Sections     []Section `json:"sections"`
}

// Section 按 key 查找章节
func (d *Document) Section(key string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// 多级编号 "1.2" 可不带分隔符，单个数字必须跟 . ) - : 之一，"2024 Budget" 不算编号
var legacyNumberPrefix = regexp.MustCompile(`^\s*(?:\d+(?:\.\d+)+\.?|\d+\s*[.)\-:])\s+`)

// StripNumberPrefix 去掉标题中遗留的编号前缀，如 "3. Foo" -> "Foo"
func StripNumberPrefix(title string) string {
	stripped := legacyNumberPrefix.ReplaceAllString(title, "")
	if stripped == "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(stripped)
}
