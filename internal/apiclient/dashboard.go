package apiclient

import (
	"context"
	"net/http"

	"github.com/nkiryanov/carectl/internal/models"
)

type DashboardService struct {
	conn *conn
}

func (s *DashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := s.conn.do(ctx, http.MethodGet, "/dashboard", nil, nil, &stats)
	return stats, err
}
