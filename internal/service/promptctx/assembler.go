// Package promptctx 组装章节生成的提示词上下文
package promptctx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultKnowledgeTextLimit = 8000
	defaultMinKnowledgeChars  = 50

	// InstructionSeparator 文档级指令与章节指令之间的分隔
	InstructionSeparator = "\n\n---\n\n"
)

// Input 组装一次提示词所需的全部数据，I/O 由调用方完成
type Input struct {
	BaseInstructions string
	SectionTitle     string
	Tender           *model.Tender
	Knowledge        []model.KnowledgeFile
	Assets           []model.Asset
	UseTender        bool
	UseKnowledge     bool
}

// Assembler 无状态，可并发使用
type Assembler struct {
	knowledgeTextLimit int
	minKnowledgeChars  int
	printer            *message.Printer
}

// NewAssembler 参数小于等于 0 时使用默认值
func NewAssembler(knowledgeTextLimit, minKnowledgeChars int) *Assembler {
	if knowledgeTextLimit <= 0 {
		knowledgeTextLimit = defaultKnowledgeTextLimit
	}
	if minKnowledgeChars <= 0 {
		minKnowledgeChars = defaultMinKnowledgeChars
	}
	return &Assembler{
		knowledgeTextLimit: knowledgeTextLimit,
		minKnowledgeChars:  minKnowledgeChars,
		printer:            message.NewPrinter(language.French),
	}
}

// BaseInstructions 文档级指令 + 分隔 + 章节指令（覆盖值优先）
func BaseInstructions(documentInstructions string, section domain.Section) string {
	doc := strings.TrimSpace(documentInstructions)
	sec := strings.TrimSpace(section.Instructions())
	switch {
	case doc == "":
		return sec
	case sec == "":
		return doc
	default:
		return doc + InstructionSeparator + sec
	}
}

// Assemble 按固定顺序拼接：图片库、知识库、招标信息、章节标题、指令；没有数据的块不输出
func (a *Assembler) Assemble(in Input) string {
	var blocks []string

	if b := a.imageLibrary(in.Assets); b != "" {
		blocks = append(blocks, b)
	}
	if in.UseKnowledge {
		if b := a.knowledgeCorpus(in.Knowledge); b != "" {
			blocks = append(blocks, b)
		}
	}
	if in.UseTender && in.Tender != nil {
		if b := a.tenderMetadata(in.Tender); b != "" {
			blocks = append(blocks, b)
		}
	}

	blocks = append(blocks, fmt.Sprintf("## Section to write: %s", domain.StripNumberPrefix(in.SectionTitle)))
	if instr := strings.TrimSpace(in.BaseInstructions); instr != "" {
		blocks = append(blocks, instr)
	}

	return strings.Join(blocks, "\n\n")
}

func (a *Assembler) imageLibrary(assets []model.Asset) string {
	var lines []string
	for _, asset := range assets {
		desc := strings.TrimSpace(asset.AIDescription)
		if desc == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s\n  Insert with: ![%s](asset:%s)", asset.Name, desc, asset.Name, asset.ID))
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Image library\n" +
		"The following images are available. Insert one only where it genuinely illustrates the text, using the exact marker shown.\n" +
		strings.Join(lines, "\n")
}

func (a *Assembler) knowledgeCorpus(files []model.KnowledgeFile) string {
	var entries []string
	for _, f := range files {
		if f.ExtractionStatus != model.ExtractionCompleted {
			continue
		}
		text := strings.TrimSpace(f.ExtractedText)
		if utf8.RuneCountInString(text) < a.minKnowledgeChars {
			continue
		}
		entries = append(entries, fmt.Sprintf("### %s (%s)\n%s", f.Name, formatSize(f.Size), truncateRunes(text, a.knowledgeTextLimit)))
	}
	if len(entries) == 0 {
		return ""
	}
	return "## Company knowledge base\n" +
		"Use these documents as the primary source of facts about the company. Adopt their vocabulary, tone and writing style.\n\n" +
		strings.Join(entries, "\n\n")
}

func (a *Assembler) tenderMetadata(t *model.Tender) string {
	var lines []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, v))
		}
	}

	add("Title", t.Title)
	add("Reference", t.Reference)
	add("Client", t.ClientName)
	if t.Budget > 0 {
		add("Budget", a.FormatCurrency(t.Budget))
	}
	if t.Deadline != nil {
		add("Deadline", FormatLongDate(*t.Deadline))
	}
	add("Status", t.Status)

	var parts []string
	if len(lines) > 0 {
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		parts = append(parts, "### Description\n"+d)
	}
	for _, att := range t.Attachments {
		var body []string
		if e := strings.TrimSpace(att.Excerpt); e != "" {
			body = append(body, truncateRunes(e, a.knowledgeTextLimit))
		}
		if an := strings.TrimSpace(att.Analysis); an != "" {
			body = append(body, "Analysis: "+an)
		}
		if len(body) > 0 {
			parts = append(parts, fmt.Sprintf("### Attachment: %s\n%s", att.Name, strings.Join(body, "\n")))
		}
	}
	for _, an := range decodeAnalyses(t) {
		if s := strings.TrimSpace(an.Summary); s != "" {
			parts = append(parts, fmt.Sprintf("### Analysis: %s\n%s", an.Title, s))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return "## Tender information\n" + strings.Join(parts, "\n\n")
}

// FormatCurrency 欧元金额，法语分组
func (a *Assembler) FormatCurrency(amount float64) string {
	return a.printer.Sprintf("%.2f €", amount)
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatLongDate 法语长日期，如 "15 mars 2026"
func FormatLongDate(t time.Time) string {
	day := fmt.Sprintf("%d", t.Day())
	if t.Day() == 1 {
		day = "1er"
	}
	return fmt.Sprintf("%s %s %d", day, frenchMonths[t.Month()-1], t.Year())
}

func decodeAnalyses(t *model.Tender) []model.TenderAnalysis {
	if len(t.Analyses) == 0 {
		return nil
	}
	var analyses []model.TenderAnalysis
	if err := json.Unmarshal(t.Analyses, &analyses); err != nil {
		return nil
	}
	return analyses
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "\n[...]"
}
