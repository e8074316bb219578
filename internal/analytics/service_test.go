package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/roomstats/internal/analytics/db"
)

type mockRepo struct {
	topRows     []analyticsdb.TopRoomsByBookingsRow
	topCalls    int
	topParams   analyticsdb.TopRoomsByBookingsParams
	occRows     []analyticsdb.AverageOccupancyRow
	occCalls    int
	heatRows    []analyticsdb.BookingHeatmapRow
	heatCalls   int
	heatParams  analyticsdb.BookingHeatmapParams
	cancelRow   analyticsdb.AutoCancelStatsRow
	cancelCalls int
	cancelErr   error
}

func (m *mockRepo) TopRoomsByBookings(ctx context.Context, arg analyticsdb.TopRoomsByBookingsParams) ([]analyticsdb.TopRoomsByBookingsRow, error) {
	m.topCalls++
	m.topParams = arg
	return m.topRows, nil
}

func (m *mockRepo) AverageOccupancy(ctx context.Context, arg analyticsdb.AverageOccupancyParams) ([]analyticsdb.AverageOccupancyRow, error) {
	m.occCalls++
	return m.occRows, nil
}

func (m *mockRepo) BookingHeatmap(ctx context.Context, arg analyticsdb.BookingHeatmapParams) ([]analyticsdb.BookingHeatmapRow, error) {
	m.heatCalls++
	m.heatParams = arg
	return m.heatRows, nil
}

func (m *mockRepo) AutoCancelStats(ctx context.Context, arg analyticsdb.AutoCancelStatsParams) (analyticsdb.AutoCancelStatsRow, error) {
	m.cancelCalls++
	return m.cancelRow, m.cancelErr
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestGetTopRoomsCaches(t *testing.T) {
	repo := &mockRepo{
		topRows: []analyticsdb.TopRoomsByBookingsRow{
			{Name: "Room A", BookingsCount: 5},
			{Name: "Room B", BookingsCount: 2},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	rooms, err := svc.GetTopRooms(ctx, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "Room A" || rooms[0].BookingsCount != 5 {
		t.Fatalf("unexpected rooms %#v", rooms)
	}
	if repo.topParams.Limit != DefaultTopRoomsLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultTopRoomsLimit, repo.topParams.Limit)
	}
	if repo.topParams.UserID.Valid || repo.topParams.From.Valid {
		t.Fatalf("expected open filter params, got %#v", repo.topParams)
	}

	// Second call should hit cache.
	if _, err := svc.GetTopRooms(ctx, Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topCalls != 1 {
		t.Fatalf("expected cached result, repo called %d times", repo.topCalls)
	}

	// Bumping the cache should trigger reload.
	if err := svc.Cache().Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	repo.topRows[0].BookingsCount = 9
	rooms, err = svc.GetTopRooms(ctx, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms[0].BookingsCount != 9 {
		t.Fatalf("expected refreshed count 9 got %d", rooms[0].BookingsCount)
	}
	if repo.topCalls != 2 {
		t.Fatalf("expected repo to refresh, calls %d", repo.topCalls)
	}
}

func TestGetTopRoomsUserScopeUsesSeparateKey(t *testing.T) {
	repo := &mockRepo{topRows: []analyticsdb.TopRoomsByBookingsRow{{Name: "Room A", BookingsCount: 1}}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	userID := int64(42)
	if _, err := svc.GetTopRooms(ctx, Filter{Limit: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topParams.Limit != MaxTopRoomsLimit {
		t.Fatalf("expected limit capped to %d, got %d", MaxTopRoomsLimit, repo.topParams.Limit)
	}
	if _, err := svc.GetTopRooms(ctx, Filter{UserID: &userID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topCalls != 2 {
		t.Fatalf("expected user scope to miss cache, calls %d", repo.topCalls)
	}
	if !repo.topParams.UserID.Valid || repo.topParams.UserID.Int64 != 42 {
		t.Fatalf("expected user param, got %#v", repo.topParams.UserID)
	}
}

func TestGetOccupancyAndHeatmap(t *testing.T) {
	repo := &mockRepo{
		occRows: []analyticsdb.AverageOccupancyRow{
			{Name: "Boardroom", AverageOccupancy: 0.75},
			{Name: "Pod", AverageOccupancy: 0},
		},
		heatRows: []analyticsdb.BookingHeatmapRow{
			{Hour: 9, Weekday: 1, Count: 4},
			{Hour: 14, Weekday: 3, Count: 2},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	svc.WithLocation(loc)

	ctx := context.Background()
	filter := Filter{From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	rooms, err := svc.GetAverageOccupancy(ctx, filter)
	if err != nil {
		t.Fatalf("occupancy error: %v", err)
	}
	if len(rooms) != 2 || rooms[0].AverageOccupancy != 0.75 {
		t.Fatalf("unexpected occupancy %#v", rooms)
	}
	if _, err := svc.GetAverageOccupancy(ctx, filter); err != nil {
		t.Fatalf("occupancy cache error: %v", err)
	}
	if repo.occCalls != 1 {
		t.Fatalf("expected cached occupancy, repo calls %d", repo.occCalls)
	}

	cells, err := svc.GetBookingHeatmap(ctx, filter)
	if err != nil {
		t.Fatalf("heatmap error: %v", err)
	}
	if len(cells) != 2 || cells[0] != (HeatmapCell{Hour: 9, Weekday: 1, Count: 4}) {
		t.Fatalf("unexpected cells %#v", cells)
	}
	if repo.heatParams.TimeZone != "Europe/Berlin" {
		t.Fatalf("expected time zone param, got %q", repo.heatParams.TimeZone)
	}
}

func TestEmptyResultsStayEmpty(t *testing.T) {
	repo := &mockRepo{heatRows: []analyticsdb.BookingHeatmapRow{}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	cells, err := svc.GetBookingHeatmap(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("heatmap error: %v", err)
	}
	if cells == nil || len(cells) != 0 {
		t.Fatalf("expected empty non-nil cells, got %#v", cells)
	}
}

func TestGetAutoCancelStats(t *testing.T) {
	repo := &mockRepo{cancelRow: analyticsdb.AutoCancelStatsRow{Total: 3, AutoCancelled: 1}}
	svc := NewService(repo, nil)

	stats, err := svc.GetAutoCancelStats(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("auto cancel error: %v", err)
	}
	if stats.Percent() != 33.33 {
		t.Fatalf("expected 33.33 got %.4f", stats.Percent())
	}
	if (AutoCancelStats{}).Percent() != 0 {
		t.Fatalf("expected zero percent without bookings")
	}

	repo.cancelErr = errors.New("db down")
	if _, err := svc.GetAutoCancelStats(context.Background(), Filter{}); err == nil {
		t.Fatalf("expected repository error")
	}
}

func TestCacheListenForInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := cache.Version(ctx); err != nil {
		t.Fatalf("version error: %v", err)
	}
	if err := cache.ListenForInvalidation(ctx, ""); err != nil {
		t.Fatalf("listen error: %v", err)
	}
	if err := client.Publish(ctx, BumpChannel, "7").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ver, err := cache.Version(ctx)
		if err != nil {
			t.Fatalf("version error: %v", err)
		}
		if ver == 7 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected version to follow published bump")
}
