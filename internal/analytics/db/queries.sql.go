package analyticsdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const topRoomsByBookings = `-- name: TopRoomsByBookings :many
SELECT r.name, COUNT(b.id)::bigint AS bookings_count
FROM rooms r
LEFT JOIN bookings b
  ON b.room_id = r.id
 AND ($1::timestamptz IS NULL OR b.start_time >= $1)
 AND ($2::timestamptz IS NULL OR b.start_time < $2)
 AND ($3::bigint IS NULL OR b.user_id = $3)
GROUP BY r.id, r.name
HAVING $3::bigint IS NULL OR COUNT(b.id) > 0
ORDER BY bookings_count DESC, r.name
LIMIT $4
`

type TopRoomsByBookingsParams struct {
	From   pgtype.Timestamptz
	To     pgtype.Timestamptz
	UserID pgtype.Int8
	Limit  int32
}

type TopRoomsByBookingsRow struct {
	Name          string
	BookingsCount int64
}

func (q *Queries) TopRoomsByBookings(ctx context.Context, arg TopRoomsByBookingsParams) ([]TopRoomsByBookingsRow, error) {
	rows, err := q.db.Query(ctx, topRoomsByBookings, arg.From, arg.To, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TopRoomsByBookingsRow{}
	for rows.Next() {
		var i TopRoomsByBookingsRow
		if err := rows.Scan(&i.Name, &i.BookingsCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const averageOccupancy = `-- name: AverageOccupancy :many
SELECT r.name,
       COALESCE(AVG(b.attendees::float8 / NULLIF(r.capacity, 0)), 0)::float8 AS average_occupancy
FROM rooms r
LEFT JOIN bookings b
  ON b.room_id = r.id
 AND ($1::timestamptz IS NULL OR b.start_time >= $1)
 AND ($2::timestamptz IS NULL OR b.start_time < $2)
GROUP BY r.id, r.name
ORDER BY average_occupancy DESC, r.name
`

type AverageOccupancyParams struct {
	From pgtype.Timestamptz
	To   pgtype.Timestamptz
}

type AverageOccupancyRow struct {
	Name             string
	AverageOccupancy float64
}

func (q *Queries) AverageOccupancy(ctx context.Context, arg AverageOccupancyParams) ([]AverageOccupancyRow, error) {
	rows, err := q.db.Query(ctx, averageOccupancy, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AverageOccupancyRow{}
	for rows.Next() {
		var i AverageOccupancyRow
		if err := rows.Scan(&i.Name, &i.AverageOccupancy); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const bookingHeatmap = `-- name: BookingHeatmap :many
SELECT EXTRACT(HOUR FROM b.start_time AT TIME ZONE $3::text)::int AS hour,
       EXTRACT(DOW FROM b.start_time AT TIME ZONE $3::text)::int AS weekday,
       COUNT(*)::bigint AS count
FROM bookings b
WHERE b.is_active
  AND ($1::timestamptz IS NULL OR b.start_time >= $1)
  AND ($2::timestamptz IS NULL OR b.start_time < $2)
GROUP BY 1, 2
ORDER BY weekday, hour
`

type BookingHeatmapParams struct {
	From     pgtype.Timestamptz
	To       pgtype.Timestamptz
	TimeZone string
}

type BookingHeatmapRow struct {
	Hour    int32
	Weekday int32
	Count   int64
}

func (q *Queries) BookingHeatmap(ctx context.Context, arg BookingHeatmapParams) ([]BookingHeatmapRow, error) {
	rows, err := q.db.Query(ctx, bookingHeatmap, arg.From, arg.To, arg.TimeZone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BookingHeatmapRow{}
	for rows.Next() {
		var i BookingHeatmapRow
		if err := rows.Scan(&i.Hour, &i.Weekday, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const autoCancelStats = `-- name: AutoCancelStats :one
SELECT COUNT(*)::bigint AS total,
       COUNT(*) FILTER (WHERE NOT b.is_active AND NOT b.checked_in)::bigint AS auto_cancelled
FROM bookings b
WHERE ($1::timestamptz IS NULL OR b.start_time >= $1)
  AND ($2::timestamptz IS NULL OR b.start_time < $2)
`

type AutoCancelStatsParams struct {
	From pgtype.Timestamptz
	To   pgtype.Timestamptz
}

type AutoCancelStatsRow struct {
	Total         int64
	AutoCancelled int64
}

func (q *Queries) AutoCancelStats(ctx context.Context, arg AutoCancelStatsParams) (AutoCancelStatsRow, error) {
	row := q.db.QueryRow(ctx, autoCancelStats, arg.From, arg.To)
	var i AutoCancelStatsRow
	err := row.Scan(&i.Total, &i.AutoCancelled)
	return i, err
}

const activeWindows = `-- name: ActiveWindows :many
SELECT DISTINCT date_trunc('month', b.start_time)::timestamptz AS month
FROM bookings b
WHERE b.start_time >= $1::timestamptz
ORDER BY month
`

// ActiveWindows lists the months with bookings since the given instant.
func (q *Queries) ActiveWindows(ctx context.Context, since pgtype.Timestamptz) ([]pgtype.Timestamptz, error) {
	rows, err := q.db.Query(ctx, activeWindows, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []pgtype.Timestamptz{}
	for rows.Next() {
		var month pgtype.Timestamptz
		if err := rows.Scan(&month); err != nil {
			return nil, err
		}
		items = append(items, month)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
