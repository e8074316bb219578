package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/chartdata"
	"github.com/odyssey-erp/roomstats/internal/analytics/export"
	"github.com/odyssey-erp/roomstats/internal/analytics/render"
	"github.com/odyssey-erp/roomstats/internal/analytics/svg"
	pgdb "github.com/odyssey-erp/roomstats/internal/platform/db"
	"github.com/odyssey-erp/roomstats/report"
)

const cliDateLayout = "2006-01-02"

type exportOptions struct {
	format string
	from   string
	to     string
	limit  int
	output string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dashboard export straight from Postgres",
		Long: `export reads all datasets from one repeatable-read snapshot, bypassing the
cache, and writes an xlsx workbook, the top rooms CSV, or a PDF rendered by Gotenberg.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.limit <= 0 {
				opts.limit = cfg.AnalyticsTopLimit
			}
			filter, period, err := opts.filter()
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer b.Close(logger)

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			payload, err := snapshotPayload(cmd.Context(), b, loc, filter)
			if err != nil {
				return err
			}
			payload.Period = period

			var buf bytes.Buffer
			switch opts.format {
			case "xlsx":
				err = export.WriteWorkbook(&buf, payload)
			case "csv":
				err = export.WriteTopRoomsCSV(&buf, payload.TopRooms)
			case "pdf":
				err = writePDF(cmd.Context(), &buf, report.NewClient(cfg.GotenbergURL), payload)
			default:
				return fmt.Errorf("unsupported format %q (want xlsx, csv or pdf)", opts.format)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", opts.format, err)
			}

			if opts.output == "" || opts.output == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			return os.WriteFile(opts.output, buf.Bytes(), 0o644)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "xlsx", "Output format: xlsx, csv, pdf")
	cmd.Flags().StringVar(&opts.from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "Last day (inclusive), YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Rooms in the ranking (default: ANALYTICS_TOP_LIMIT)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

// filter mirrors the dashboard query semantics: to is inclusive.
func (o exportOptions) filter() (analytics.Filter, string, error) {
	filter := analytics.Filter{Limit: o.limit}
	if o.limit > analytics.MaxTopRoomsLimit {
		return filter, "", fmt.Errorf("--limit must be between 1 and %d", analytics.MaxTopRoomsLimit)
	}
	if o.from != "" {
		from, err := time.Parse(cliDateLayout, o.from)
		if err != nil {
			return filter, "", fmt.Errorf("--from: expected YYYY-MM-DD")
		}
		filter.From = from
	}
	if o.to != "" {
		to, err := time.Parse(cliDateLayout, o.to)
		if err != nil {
			return filter, "", fmt.Errorf("--to: expected YYYY-MM-DD")
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return filter, "", fmt.Errorf("--to must not be before --from")
	}

	period := "All time"
	switch {
	case o.from != "" && o.to != "":
		period = o.from + " to " + o.to
	case o.from != "":
		period = "Since " + o.from
	case o.to != "":
		period = "Until " + o.to
	}
	return filter, period, nil
}

func snapshotPayload(ctx context.Context, b *backend, loc *time.Location, filter analytics.Filter) (export.DashboardPayload, error) {
	payload := export.DashboardPayload{GeneratedAt: time.Now()}
	err := pgdb.WithSnapshot(ctx, b.pool, func(tx pgx.Tx) error {
		svc := analytics.NewService(b.queries.WithTx(tx), nil).WithLocation(loc)
		var err error
		if payload.TopRooms, err = svc.GetTopRooms(ctx, filter); err != nil {
			return fmt.Errorf("top rooms: %w", err)
		}
		if payload.Occupancy, err = svc.GetAverageOccupancy(ctx, filter); err != nil {
			return fmt.Errorf("occupancy: %w", err)
		}
		if payload.Heatmap, err = svc.GetBookingHeatmap(ctx, filter); err != nil {
			return fmt.Errorf("heatmap: %w", err)
		}
		if payload.AutoCancel, err = svc.GetAutoCancelStats(ctx, filter); err != nil {
			return fmt.Errorf("auto cancel: %w", err)
		}
		return nil
	})
	return payload, err
}

func writePDF(ctx context.Context, w io.Writer, converter export.HTMLConverter, payload export.DashboardPayload) error {
	renderer := svg.NewRenderer()
	charts := map[string]render.Chart{
		render.ChartTopRooms:  render.TopRoomsChart(chartdata.ToTopRoomsSeries(payload.TopRooms)),
		render.ChartOccupancy: render.OccupancyChart(chartdata.ToOccupancySeries(payload.Occupancy)),
		render.ChartHeatmap:   render.HeatmapChart(chartdata.ToHeatmapPoints(payload.Heatmap)),
	}
	payload.Charts = make(map[string]template.HTML, len(charts))
	for id, chart := range charts {
		html, err := render.HTML(renderer, chart)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		payload.Charts[id] = html
	}
	data, err := export.NewPDFExporter(converter).RenderDashboard(ctx, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
