package storage

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

type ClickHouseConfig struct {
	Addr     []string `yaml:"addr"`
	Database string   `yaml:"database"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`

	// AllowedTables restricts the tables queries may read. Empty means any.
	AllowedTables []string `yaml:"allowed_tables"`

	// DefaultLimit is applied to queries without a LIMIT clause.
	DefaultLimit int `yaml:"default_limit"`

	QueryTimeout time.Duration `yaml:"query_timeout"`
}

func (c ClickHouseConfig) Validate() error {
	if len(c.Addr) == 0 {
		return errors.New("clickhouse address is required")
	}

	return nil
}

// queryConn is the part of driver.Conn the backend uses.
type queryConn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Close() error
}

// ClickHouseBackend executes queries that read table data. Literal-only
// sub-expressions are folded by the broker's evaluator and sent as bound
// arguments.
type ClickHouseBackend struct {
	cfg     ClickHouseConfig
	logger  *slog.Logger
	builder *querier.SQLQueryBuilder
	conn    queryConn
}

func NewClickHouseBackend(cfg ClickHouseConfig, folder querier.Folder, logger *slog.Logger) (*ClickHouseBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = time.Minute
	}

	return &ClickHouseBackend{
		cfg:    cfg,
		logger: logger,
		builder: querier.NewSQLQueryBuilder(querier.SQLOptions{
			AllowedTables: cfg.AllowedTables,
			DefaultLimit:  cfg.DefaultLimit,
			Folder:        folder,
		}),
	}, nil
}

func (s *ClickHouseBackend) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: s.cfg.Addr,
		Auth: clickhouse.Auth{
			Database: s.cfg.Database,
			Username: s.cfg.Username,
			Password: s.cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return fmt.Errorf("failed to connect: %v", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the database: %w", err)
	}

	s.conn = conn

	return nil
}

func (s *ClickHouseBackend) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Query implements querier.Querier.
func (s *ClickHouseBackend) Query(ctx context.Context, req querier.QueryRequest) (*querier.BrokerResponse, error) {
	if s.conn == nil {
		return nil, fault.New(fault.BackendCode, "Backend is not connected.")
	}

	built, err := s.builder.Build(req.Query)
	if err != nil {
		if fault.CodeOf(err) != fault.UnknownCode {
			return nil, err
		}
		return nil, fault.New(fault.BadInputCode, err.Error()).WithOriginal(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var scanned atomic.Int64
	ctx = clickhouse.Context(ctx, clickhouse.WithProgress(func(p *clickhouse.Progress) {
		scanned.Add(int64(p.Rows))
	}))

	s.logger.Debug("running backend query", "request_id", req.ID, "sql", built.Query, "args", len(built.Args))

	rows, err := s.conn.Query(ctx, built.Query, built.Args...)
	if err != nil {
		return nil, fault.New(fault.BackendCode, "Backend query failed.").WithOriginal(err)
	}
	defer rows.Close()

	table, err := readResultTable(rows)
	if err != nil {
		return nil, fault.New(fault.BackendCode, "Cannot read backend result.").WithOriginal(err)
	}

	return &querier.BrokerResponse{
		ResultTable: table,
		Exceptions:  []querier.QueryException{},
		TotalDocs:   scanned.Load(),
	}, nil
}

func readResultTable(rows driver.Rows) (*querier.ResultTable, error) {
	columns := rows.ColumnTypes()

	names := make([]string, len(columns))
	types := make([]querier.DataType, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
		types[i] = dataTypeOf(c.DatabaseTypeName())
	}

	schema, err := querier.NewDataSchema(names, types)
	if err != nil {
		return nil, err
	}

	table := &querier.ResultTable{DataSchema: schema, Rows: [][]any{}}

	for rows.Next() {
		dest := make([]any, len(columns))
		for i, c := range columns {
			dest[i] = reflect.New(c.ScanType()).Interface()
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "cannot scan row")
		}

		row := make([]any, len(columns))
		for i := range dest {
			row[i] = cellValue(types[i], reflect.ValueOf(dest[i]).Elem())
		}
		table.Rows = append(table.Rows, row)
	}

	return table, rows.Err()
}

// dataTypeOf maps a ClickHouse column type name to a result data type.
func dataTypeOf(dbType string) querier.DataType {
	t := unwrapType(dbType)

	switch {
	case t == "Bool":
		return querier.TypeBoolean
	case t == "Int8", t == "Int16", t == "Int32", t == "UInt8", t == "UInt16":
		return querier.TypeInt
	case t == "Int64", t == "UInt32", t == "UInt64":
		return querier.TypeLong
	case t == "Float32":
		return querier.TypeFloat
	case t == "Float64", strings.HasPrefix(t, "Decimal"):
		return querier.TypeDouble
	case strings.HasPrefix(t, "DateTime"), t == "Date", t == "Date32":
		return querier.TypeTimestamp
	default:
		return querier.TypeString
	}
}

func unwrapType(t string) string {
	for unwrapped := false; !unwrapped; {
		unwrapped = true
		for _, wrapper := range []string{"Nullable(", "LowCardinality("} {
			if strings.HasPrefix(t, wrapper) && strings.HasSuffix(t, ")") {
				t = t[len(wrapper) : len(t)-1]
				unwrapped = false
			}
		}
	}
	if i := strings.IndexByte(t, '('); i > 0 && !strings.HasPrefix(t, "DateTime") && !strings.HasPrefix(t, "Decimal") {
		t = t[:i]
	}
	return t
}

// cellValue converts a scanned driver value into the representation of typ.
func cellValue(typ querier.DataType, v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return t.UnixMilli()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return integralCell(typ, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return integralCell(typ, int64(v.Uint()))
	case reflect.Float32:
		return float32(v.Float())
	case reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	}

	if f, ok := v.Interface().(interface{ InexactFloat64() float64 }); ok {
		return f.InexactFloat64()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}

func integralCell(typ querier.DataType, i int64) any {
	if typ == querier.TypeInt {
		return int32(i)
	}
	return i
}
