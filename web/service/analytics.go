package service

import (
	"time"

	"github.com/alx-polly/polly/caching"
	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const statsCacheKey = "analytics:dashboard"

// DashboardStats are the aggregate counts shown on the admin dashboard.
type DashboardStats struct {
	Users      int64 `json:"users"`
	Polls      int64 `json:"polls"`
	Votes      int64 `json:"votes"`
	VotesToday int64 `json:"votesToday"`
	PollsToday int64 `json:"pollsToday"`
}

// SystemStatus is a snapshot of host health for the admin dashboard.
type SystemStatus struct {
	CPUPercent float64 `json:"cpuPercent"`
	MemUsed    uint64  `json:"memUsed"`
	MemTotal   uint64  `json:"memTotal"`
	Uptime     uint64  `json:"uptime"`
}

// AnalyticsService computes admin dashboard aggregates. Stats are cached
// briefly so a busy dashboard does not hammer the database.
type AnalyticsService struct {
	Cache *caching.Cache
}

func (s *AnalyticsService) GetDashboardStats() (*DashboardStats, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.Memory().Get(statsCacheKey); ok {
			if stats, ok := cached.(*DashboardStats); ok {
				return stats, nil
			}
		}
	}

	db := database.GetDB()
	stats := &DashboardStats{}

	if err := db.Model(model.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Poll{}).Count(&stats.Polls).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Vote{}).Count(&stats.Votes).Error; err != nil {
		return nil, err
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	if err := db.Model(model.Vote{}).Where("created_at >= ?", midnight).Count(&stats.VotesToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Poll{}).Where("created_at >= ?", midnight).Count(&stats.PollsToday).Error; err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Memory().Set(statsCacheKey, stats, 30*time.Second)
	}
	return stats, nil
}

// GetSystemStatus reads host metrics. Individual probe failures leave zero
// values rather than failing the dashboard.
func (s *AnalyticsService) GetSystemStatus() *SystemStatus {
	status := &SystemStatus{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemUsed = vm.Used
		status.MemTotal = vm.Total
	}
	if uptime, err := host.Uptime(); err == nil {
		status.Uptime = uptime
	}

	return status
}

// GetRecentPolls lists the newest polls for the moderation page.
func (s *AnalyticsService) GetRecentPolls(limit int) ([]model.Poll, error) {
	if limit <= 0 || limit > maxPageLimit {
		limit = 25
	}
	db := database.GetDB()
	var polls []model.Poll
	err := db.Model(model.Poll{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}
