package domain

// Status is one entry of a per-kind status vocabulary.
type Status struct {
	ID         int64
	ProjectID  int64
	EntityKind EntityKind
	Name       string
	Slug       string
	IsClosed   bool
}

// Milestone is a sprint in the target project.
type Milestone struct {
	ID        int64
	ProjectID int64
	Name      string
}

// Points is an estimation value available in a project.
type Points struct {
	ID        int64
	ProjectID int64
	Name      string
	Value     float64
	Order     float64
}

// Role is a project role; story points are recorded against the "main" role.
type Role struct {
	ID        int64
	ProjectID int64
	Slug      string
	Name      string
}

// CustomAttribute is a per-kind custom field definition.
type CustomAttribute struct {
	ID         int64
	ProjectID  int64
	EntityKind EntityKind
	Name       string
	Type       string
}

const MainRoleSlug = "main"
