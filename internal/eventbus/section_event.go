package eventbus

import "time"

type SectionEventType string

const (
	SectionEventStarted   SectionEventType = "SectionStarted"
	SectionEventGenerated SectionEventType = "SectionGenerated"
	SectionEventFailed    SectionEventType = "SectionFailed"
	SectionEventRetried   SectionEventType = "ProviderRetried"
	SectionEventExported  SectionEventType = "DocumentExported"
)

type SectionEvent struct {
	Type       SectionEventType
	DocumentID uint
	SectionKey string
	Duration   time.Duration // 生成耗时，仅 Generated/Failed 有值
	Attempt    int           // 重试序号，仅 Retried 有值
	Format     string        // 导出格式，仅 Exported 有值
	Err        error
}

func (e SectionEvent) EventType() SectionEventType {
	return e.Type
}

type SectionEventHandler = Handler[SectionEvent]
type SectionEventBus = Bus[SectionEventType, SectionEvent]

func NewSectionEventBus() *SectionEventBus {
	return NewBus[SectionEventType, SectionEvent]()
}
