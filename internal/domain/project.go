package domain

import "time"

// Project is a named container of modules.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Module is a named group of cases within exactly one project.
type Module struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

// Stats holds aggregate case counts for a project.
type Stats struct {
	Total       int `json:"total"`
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Pending     int `json:"pending"`
	ModuleCount int `json:"modules"`
}

// ModuleStats holds per-module progress counts used by module discovery views.
type ModuleStats struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Pending int    `json:"pending"`
}
