// Package entity defines data structures shared by the web layer.
package entity

// Msg represents a standard API response with success status, message text,
// and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// AllSetting contains the editable server settings exposed on the admin
// settings form.
type AllSetting struct {
	WebListen     string `json:"webListen" form:"webListen"`
	WebPort       int    `json:"webPort" form:"webPort"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes
	PageSize      int    `json:"pageSize" form:"pageSize"`
}
