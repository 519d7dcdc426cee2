package generation

import (
	"sync"

	"github.com/opentender/backend/internal/domain"
)

// Store 已打开文档的内存章节目录
// 章节只能整体替换，读取方拿到的是副本，不会看到修改一半的对象
type Store struct {
	mu   sync.RWMutex
	docs map[uint]*storedDocument
}

type storedDocument struct {
	header   domain.Document // Sections 字段不使用
	order    []string
	sections map[string]domain.Section
}

func NewStore() *Store {
	return &Store{docs: make(map[uint]*storedDocument)}
}

// Put 放入或整体替换一个文档
func (s *Store) Put(doc domain.Document) {
	entry := &storedDocument{
		header:   doc,
		order:    make([]string, 0, len(doc.Sections)),
		sections: make(map[string]domain.Section, len(doc.Sections)),
	}
	entry.header.Sections = nil
	for _, sec := range doc.Sections {
		entry.order = append(entry.order, sec.Key)
		entry.sections[sec.Key] = sec
	}

	s.mu.Lock()
	s.docs[doc.ID] = entry
	s.mu.Unlock()
}

// Has 文档是否已加载
func (s *Store) Has(docID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[docID]
	return ok
}

// Get 返回文档快照
func (s *Store) Get(docID uint) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.docs[docID]
	if !ok {
		return domain.Document{}, false
	}
	doc := entry.header
	doc.Sections = make([]domain.Section, 0, len(entry.order))
	for _, key := range entry.order {
		doc.Sections = append(doc.Sections, entry.sections[key])
	}
	return doc, true
}

// SetHeader 替换文档级字段（标题、指令等），章节不变
func (s *Store) SetHeader(doc domain.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.docs[doc.ID]
	if !ok {
		return false
	}
	doc.Sections = nil
	entry.header = doc
	return true
}

// Section 返回单个章节
func (s *Store) Section(docID uint, key string) (domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.docs[docID]
	if !ok {
		return domain.Section{}, domain.ErrDocumentNotFound
	}
	sec, ok := entry.sections[key]
	if !ok {
		return domain.Section{}, domain.ErrSectionNotFound
	}
	return sec, nil
}

// Update 在锁内读取当前章节并用 fn 的返回值整体替换；fn 返回错误时不做修改
func (s *Store) Update(docID uint, key string, fn func(current domain.Section) (domain.Section, error)) (domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.docs[docID]
	if !ok {
		return domain.Section{}, domain.ErrDocumentNotFound
	}
	current, ok := entry.sections[key]
	if !ok {
		return domain.Section{}, domain.ErrSectionNotFound
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}
	next.Key = key
	entry.sections[key] = next
	return next, nil
}
