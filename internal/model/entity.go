package model

// EntityRole 查询实体声明的语义角色
type EntityRole string

const (
	RoleNone       EntityRole = ""
	RoleMetric     EntityRole = "metric"
	RoleDimension  EntityRole = "dimension"
	RoleTime       EntityRole = "time"
	RoleIdentifier EntityRole = "identifier"
)

// Entity 查询侧对某一列的请求，由外部意图解析器提供，核心只读
type Entity struct {
	Label string     `json:"label"`
	Role  EntityRole `json:"role,omitempty"`
}

// MatchRule 产生绑定的匹配规则
type MatchRule string

const (
	RuleExact      MatchRule = "exact"
	RuleSimilarity MatchRule = "similarity"
	RuleRole       MatchRule = "role"
	RuleUnresolved MatchRule = "unresolved"
)

// ColumnBinding 实体到列的解析结果；Resolved=false 表示未解析，不是错误
type ColumnBinding struct {
	Entity     Entity    `json:"entity"`
	Column     string    `json:"column,omitempty"`
	Ordinal    int       `json:"ordinal"`
	Resolved   bool      `json:"resolved"`
	Confidence float64   `json:"confidence"`
	Rule       MatchRule `json:"rule"`
}
