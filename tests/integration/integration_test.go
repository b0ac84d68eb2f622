// Package integration_test cross-checks Arrow masks against DuckDB, which
// evaluates the SQL the filter package generates for the same filters.
package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hugr-lab/arrowmask"
	"github.com/hugr-lab/arrowmask/catalog"
	"github.com/hugr-lab/arrowmask/filter"

	_ "github.com/duckdb/duckdb-go/v2"
)

const numRows = 200

var baseTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// readingsSchema mirrors the DuckDB table created by openDuckDB.
var readingsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "x", Type: arrow.PrimitiveTypes.Int64},
	{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "site", Type: arrow.BinaryTypes.String},
	{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
	{Name: "day", Type: arrow.FixedWidthTypes.Date32},
}, nil)

type reading struct {
	id    int64
	x     int64
	score sql.NullFloat64
	site  string
	ts    time.Time
	day   time.Time
}

var sites = []string{"north", "south", "east", "west", "O'Hare"}

// readings returns deterministic rows: x cycles through 0..49, score is null
// on every seventh row, ts advances one minute per row and day cycles
// through the first ten days of May.
func readings() []reading {
	rows := make([]reading, numRows)
	for i := range rows {
		rows[i] = reading{
			id:    int64(i),
			x:     int64((i * 37) % 50),
			score: sql.NullFloat64{Float64: float64(i%40) / 40, Valid: i%7 != 0},
			site:  sites[i%len(sites)],
			ts:    baseTime.Add(time.Duration(i) * time.Minute),
			day:   baseTime.AddDate(0, 0, i%10),
		}
	}
	return rows
}

func readingsRecord(mem memory.Allocator, rows []reading) arrow.RecordBatch {
	builder := array.NewRecordBuilder(mem, readingsSchema)
	defer builder.Release()

	for _, r := range rows {
		builder.Field(0).(*array.Int64Builder).Append(r.id)
		builder.Field(1).(*array.Int64Builder).Append(r.x)
		if r.score.Valid {
			builder.Field(2).(*array.Float64Builder).Append(r.score.Float64)
		} else {
			builder.Field(2).(*array.Float64Builder).AppendNull()
		}
		builder.Field(3).(*array.StringBuilder).Append(r.site)
		ts, _ := arrow.TimestampFromTime(r.ts, arrow.Microsecond)
		builder.Field(4).(*array.TimestampBuilder).Append(ts)
		builder.Field(5).(*array.Date32Builder).Append(arrow.Date32FromTime(r.day))
	}
	return builder.NewRecordBatch()
}

// openDuckDB opens an in-memory DuckDB database holding the readings table.
func openDuckDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}

	_, err = db.Exec(`CREATE TABLE readings (
		id BIGINT, x BIGINT, score DOUBLE, site VARCHAR, ts TIMESTAMP, day DATE
	)`)
	if err != nil {
		db.Close()
		t.Fatalf("Failed to create table: %v", err)
	}

	for _, r := range readings() {
		// Timestamps are inserted as UTC wall clock text so no session
		// time zone is involved.
		_, err := db.Exec("INSERT INTO readings VALUES (?, ?, ?, ?, CAST(? AS TIMESTAMP), CAST(? AS DATE))",
			r.id, r.x, r.score, r.site, r.ts.Format(time.DateTime), r.day.Format(time.DateOnly))
		if err != nil {
			db.Close()
			t.Fatalf("Failed to insert row %d: %v", r.id, err)
		}
	}
	return db
}

// queryIDs returns the ids selected by a WHERE body, in id order.
func queryIDs(t testing.TB, db *sql.DB, where string) []int64 {
	t.Helper()

	query := "SELECT id FROM readings"
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := db.Query(query + " ORDER BY id")
	if err != nil {
		t.Fatalf("Failed to query %q: %v", query, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Failed to scan id: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Rows error: %v", err)
	}
	return ids
}

// duckDBScanFunc serves the readings table from DuckDB, pushing the filter
// down as a WHERE clause. Unsupported parts of the filter are left to the
// server, which masks every batch again.
func duckDBScanFunc(db *sql.DB, pushed *[]string) catalog.ScanFunc {
	return func(ctx context.Context, opts *catalog.ScanOptions) (array.RecordReader, error) {
		where := ""
		if opts.Filter != nil {
			where = filter.NewDuckDBEncoder(nil).EncodeFilter(opts.Filter)
		}
		*pushed = append(*pushed, where)

		query := "SELECT id, x, score, site, ts, day FROM readings"
		if where != "" {
			query += " WHERE " + where
		}
		rows, err := db.QueryContext(ctx, query+" ORDER BY id")
		if err != nil {
			return nil, fmt.Errorf("query readings: %w", err)
		}
		defer rows.Close()

		var out []reading
		for rows.Next() {
			var r reading
			if err := rows.Scan(&r.id, &r.x, &r.score, &r.site, &r.ts, &r.day); err != nil {
				return nil, fmt.Errorf("scan reading: %w", err)
			}
			r.ts = r.ts.UTC()
			r.day = r.day.UTC()
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		rec := readingsRecord(memory.DefaultAllocator, out)
		defer rec.Release()
		return array.NewRecordReader(readingsSchema, []arrow.RecordBatch{rec})
	}
}

// testServer wraps a Flight server for integration testing.
type testServer struct {
	grpcServer *grpc.Server
	listener   net.Listener
	address    string
}

// newTestServer creates and starts a test Flight server.
func newTestServer(t testing.TB, cat catalog.Catalog) *testServer {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}

	config := arrowmask.ServerConfig{
		Catalog: cat,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	grpcServer := grpc.NewServer(arrowmask.ServerOptions(config)...)
	if err := arrowmask.NewServer(grpcServer, config); err != nil {
		t.Fatalf("Failed to register server: %v", err)
	}

	go func() {
		_ = grpcServer.Serve(lis)
	}()

	return &testServer{
		grpcServer: grpcServer,
		listener:   lis,
		address:    lis.Addr().String(),
	}
}

// stop gracefully stops the test server.
func (s *testServer) stop() {
	s.grpcServer.GracefulStop()
	s.listener.Close()
}

func (s *testServer) client(t testing.TB) flight.Client {
	t.Helper()
	client, err := flight.NewClientWithMiddleware(s.address, nil, nil,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}
