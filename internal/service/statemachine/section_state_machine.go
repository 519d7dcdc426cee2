package statemachine

import (
	"fmt"

	"github.com/opentender/backend/internal/domain"
	"k8s.io/klog/v2"
)

// SectionTransition 定义章节生成状态迁移
type SectionTransition struct {
	From domain.GenerationState
	To   domain.GenerationState
}

// SectionStateMachine 章节生成状态机
type SectionStateMachine struct {
	allowedTransitions map[SectionTransition]bool
}

// NewSectionStateMachine 创建章节状态机
func NewSectionStateMachine() *SectionStateMachine {
	sm := &SectionStateMachine{
		allowedTransitions: make(map[SectionTransition]bool),
	}

	// idle -> generating -> generated/failed
	// generated/failed -> generating（重新生成）
	// generated/failed -> idle（内容被清空）
	// 手动编辑内容：idle/failed -> generated
	transitions := []SectionTransition{
		{domain.StateIdle, domain.StateGenerating},
		{domain.StateGenerating, domain.StateGenerated},
		{domain.StateGenerating, domain.StateFailed},

		{domain.StateGenerated, domain.StateGenerating},
		{domain.StateFailed, domain.StateGenerating},

		{domain.StateGenerated, domain.StateIdle},
		{domain.StateFailed, domain.StateIdle},

		{domain.StateIdle, domain.StateGenerated},
		{domain.StateFailed, domain.StateGenerated},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *SectionStateMachine) CanTransition(from, to domain.GenerationState) bool {
	if from == to {
		return false
	}
	return sm.allowedTransitions[SectionTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *SectionStateMachine) ValidateTransition(from, to domain.GenerationState) error {
	if !sm.CanTransition(from, to) {
		return &InvalidSectionTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *SectionStateMachine) Transition(from, to domain.GenerationState, docID uint, key string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("章节状态迁移被拒绝: docID=%d, section=%s, %s -> %s, error=%v",
			docID, key, from, to, err)
		return err
	}

	klog.V(6).Infof("章节状态迁移成功: docID=%d, section=%s, %s -> %s", docID, key, from, to)
	return nil
}

// InvalidSectionTransitionError 无效的章节状态迁移错误
type InvalidSectionTransitionError struct {
	From string
	To   string
}

func (e *InvalidSectionTransitionError) Error() string {
	return fmt.Sprintf("invalid section state transition: %s -> %s", e.From, e.To)
}

// IsSettled 判断一次生成是否已结束
func IsSettled(state domain.GenerationState) bool {
	return state == domain.StateGenerated || state == domain.StateFailed
}
