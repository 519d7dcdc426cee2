package domain

// CatalogEntry 固定章节目录中的一项
type CatalogEntry struct {
	Key          string
	Title        string
	Icon         string
	Instructions string
}

// Catalog 招标响应文档（技术标）的固定章节目录，用户不能新增章节，只能停用
var Catalog = []CatalogEntry{
	{"company", "1. Company Presentation", "building", "Present the company: identity, legal form, headcount, turnover over the last three years, certifications and the business lines relevant to this tender."},
	{"understanding", "2. Understanding of the Need", "search", "Restate the buyer's context, objectives and constraints as expressed in the tender file, and highlight the key stakes and risks."},
	{"approach", "3. Technical Approach", "tool", "Describe the proposed technical solution in detail, justify each technical choice and explain how it answers every requirement of the specifications."},
	{"methodology", "4. Methodology", "route", "Describe the project methodology: phases, deliverables, governance, steering committees and communication with the buyer."},
	{"team", "5. Project Team", "users", "Present the dedicated team: roles, responsibilities, qualifications and relevant experience of each key member. Include an organisation table."},
	{"planning", "6. Planning", "calendar", "Provide a detailed provisional schedule with milestones, durations and dependencies. Use a table listing phases, start and end dates."},
	{"quality", "7. Quality Assurance", "check", "Describe the quality assurance plan, control procedures, indicators and continuous improvement measures."},
	{"environment", "8. Environmental and Social Commitments", "leaf", "Describe environmental, social and ethical commitments applied to the execution of the contract."},
	{"references", "9. References", "award", "List comparable references of the last five years in a table: client, scope, amount, year and contact."},
	{"support", "10. Support and Maintenance", "lifebuoy", "Describe after-sales support, maintenance terms, service levels and response times."},
}

// NewCatalogSections 以固定目录构造空章节
func NewCatalogSections() []Section {
	sections := make([]Section, 0, len(Catalog))
	for _, entry := range Catalog {
		sections = append(sections, Section{
			Key:                 entry.Key,
			Title:               entry.Title,
			Icon:                entry.Icon,
			DefaultInstructions: entry.Instructions,
			Enabled:             true,
			State:               StateIdle,
		})
	}
	return sections
}

// CatalogEntryByKey 按 key 查找目录项
func CatalogEntryByKey(key string) (CatalogEntry, bool) {
	for _, entry := range Catalog {
		if entry.Key == key {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}
