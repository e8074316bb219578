package analytics

import (
	"context"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	analyticsdb "github.com/odyssey-erp/roomstats/internal/analytics/db"
)

func perfRepo() *mockRepo {
	repo := &mockRepo{cancelRow: analyticsdb.AutoCancelStatsRow{Total: 900, AutoCancelled: 120}}
	for i := 0; i < 20; i++ {
		repo.topRows = append(repo.topRows, analyticsdb.TopRoomsByBookingsRow{Name: "Room", BookingsCount: int64(100 - i)})
		repo.occRows = append(repo.occRows, analyticsdb.AverageOccupancyRow{Name: "Room", AverageOccupancy: 0.4})
	}
	for wd := int32(0); wd < 7; wd++ {
		for h := int32(0); h < 24; h++ {
			repo.heatRows = append(repo.heatRows, analyticsdb.BookingHeatmapRow{Hour: h, Weekday: wd, Count: int64(h + wd)})
		}
	}
	return repo
}

func newPerfService(tb testing.TB) *Service {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })
	return NewService(perfRepo(), NewCache(client, time.Minute))
}

func dashboard(ctx context.Context, svc *Service, filter Filter) error {
	if _, err := svc.GetTopRooms(ctx, filter); err != nil {
		return err
	}
	if _, err := svc.GetAverageOccupancy(ctx, filter); err != nil {
		return err
	}
	if _, err := svc.GetBookingHeatmap(ctx, filter); err != nil {
		return err
	}
	_, err := svc.GetAutoCancelStats(ctx, filter)
	return err
}

func TestDashboardLatencyTargets(t *testing.T) {
	if testing.Short() {
		t.Skip("latency sampling skipped in short mode")
	}
	ctx := context.Background()
	svc := newPerfService(t)

	var cold, warm []time.Duration
	for i := 0; i < 20; i++ {
		filter := Filter{From: time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)}
		start := time.Now()
		if err := dashboard(ctx, svc, filter); err != nil {
			t.Fatalf("cold dashboard: %v", err)
		}
		cold = append(cold, time.Since(start))

		start = time.Now()
		if err := dashboard(ctx, svc, filter); err != nil {
			t.Fatalf("cached dashboard: %v", err)
		}
		warm = append(warm, time.Since(start))
	}

	if p95 := percentile95(warm); p95 > 500*time.Millisecond {
		t.Fatalf("cached latency regression: p95=%s", p95)
	}
	if p95 := percentile95(cold); p95 > 2*time.Second {
		t.Fatalf("cold latency regression: p95=%s", p95)
	}
}

func TestPercentile95(t *testing.T) {
	if got := percentile95(nil); got != 0 {
		t.Fatalf("expected 0 for no samples, got %s", got)
	}
	samples := make([]time.Duration, 0, 20)
	for i := 20; i >= 1; i-- {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}
	if got := percentile95(samples); got != 19*time.Millisecond {
		t.Fatalf("unexpected p95 %s", got)
	}
}

func BenchmarkDashboardCached(b *testing.B) {
	ctx := context.Background()
	svc := newPerfService(b)
	if err := dashboard(ctx, svc, Filter{}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dashboard(ctx, svc, Filter{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDashboardUncached(b *testing.B) {
	ctx := context.Background()
	svc := NewService(perfRepo(), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dashboard(ctx, svc, Filter{}); err != nil {
			b.Fatal(err)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
