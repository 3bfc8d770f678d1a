package services

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"gorm.io/gorm"
)

// StatsService is the read-side aggregation over both workflows. It holds no
// state of its own; the status lists must stay in lockstep with the state
// machines in AdmissionService and RenewalService.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService() *StatsService {
	return &StatsService{db: database.GetDB()}
}

// NewStatsServiceWithDB is used by tests.
func NewStatsServiceWithDB(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// DashboardStats are the counts shown on the admin dashboard.
type DashboardStats struct {
	Admissions map[string]int64 `json:"admissions"`
	Renewals   map[string]int64 `json:"renewals"`
	Students   int64            `json:"students"`
}

type statusCount struct {
	Status string
	Count  int64
}

// Collect gathers counts by status for admissions and renewals plus the
// student total. Zero counts are reported explicitly for every known status.
func (s *StatsService) Collect() (*DashboardStats, error) {
	stats := &DashboardStats{
		Admissions: map[string]int64{
			models.AdmissionStatusPending:  0,
			models.AdmissionStatusApproved: 0,
			models.AdmissionStatusRejected: 0,
			models.AdmissionStatusStudent:  0,
		},
		Renewals: map[string]int64{
			models.RenewalStatusPending:  0,
			models.RenewalStatusApproved: 0,
			models.RenewalStatusRejected: 0,
		},
	}

	var rows []statusCount
	err := s.db.Model(&models.AdmissionApplication{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.Admissions[row.Status] = row.Count
	}

	rows = rows[:0]
	err = s.db.Model(&models.RenewalApplication{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.Renewals[row.Status] = row.Count
	}

	if err := s.db.Model(&models.Student{}).Count(&stats.Students).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
