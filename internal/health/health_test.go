package health

import (
	"context"
	"errors"
	"testing"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheckBasic(t *testing.T) {
	ctx := context.Background()
	if s := NewHealthChecker("sqlite", ok, nil).CheckBasic(ctx); s.Status != "healthy" || s.Database.Status != "healthy" {
		t.Errorf("healthy db: %+v", s)
	}
	if s := NewHealthChecker("postgres", down, nil).CheckBasic(ctx); s.Status != "unhealthy" || s.Database.Error == "" {
		t.Errorf("down db: %+v", s)
	}
	if s := NewHealthChecker("memory", nil, nil).CheckBasic(ctx); s.Status != "healthy" || s.Database.Status != "disabled" {
		t.Errorf("memory storage: %+v", s)
	}
}

func TestCheckDetailedDegradesOnRedis(t *testing.T) {
	d := NewHealthChecker("sqlite", ok, down).CheckDetailed(context.Background())
	if d.Status != "degraded" || d.Redis.Status != "unhealthy" {
		t.Errorf("detailed = %+v", d)
	}
	d = NewHealthChecker("sqlite", ok, nil).CheckDetailed(context.Background())
	if d.Status != "healthy" || d.Redis.Status != "disabled" {
		t.Errorf("no redis = %+v", d)
	}
}
