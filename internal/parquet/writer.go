package parquet

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// writeBatch is how many records accumulate before handing them to the
// underlying writer in one call.
const writeBatch = 1000

// FileWriter writes connection records to one parquet file. Rows arrive as
// positional values in table column order (id first, label last when
// labeled), the shape warehouse scans produce.
type FileWriter struct {
	f       *os.File
	labeled bool

	lw   *parquet.GenericWriter[LabeledConnection]
	uw   *parquet.GenericWriter[Connection]
	lbuf []LabeledConnection
	ubuf []Connection

	rows int64
}

// NewFileWriter creates (or truncates) the parquet file at path.
func NewFileWriter(path string, labeled bool) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: create %s: %w", path, err)
	}

	w := &FileWriter{f: f, labeled: labeled}
	if labeled {
		w.lw = parquet.NewGenericWriter[LabeledConnection](f)
		w.lbuf = make([]LabeledConnection, 0, writeBatch)
	} else {
		w.uw = parquet.NewGenericWriter[Connection](f)
		w.ubuf = make([]Connection, 0, writeBatch)
	}
	return w, nil
}

// WriteRow converts one positional row and buffers it.
func (w *FileWriter) WriteRow(vals []any) error {
	if w.labeled {
		var rec LabeledConnection
		if err := fillConnection(&rec.Connection, vals[:len(vals)-1]); err != nil {
			return err
		}
		label, err := asString(vals[len(vals)-1])
		if err != nil {
			return fmt.Errorf("parquet: label: %w", err)
		}
		rec.Label = label

		w.lbuf = append(w.lbuf, rec)
		w.rows++
		if len(w.lbuf) >= writeBatch {
			return w.flush()
		}
		return nil
	}

	var rec Connection
	if err := fillConnection(&rec, vals); err != nil {
		return err
	}
	w.ubuf = append(w.ubuf, rec)
	w.rows++
	if len(w.ubuf) >= writeBatch {
		return w.flush()
	}
	return nil
}

// Rows reports how many rows have been accepted so far.
func (w *FileWriter) Rows() int64 { return w.rows }

// Close flushes buffered records, finalizes the parquet footer, and closes
// the file.
func (w *FileWriter) Close() error {
	if err := w.flush(); err != nil {
		w.f.Close()
		return err
	}

	var err error
	if w.labeled {
		err = w.lw.Close()
	} else {
		err = w.uw.Close()
	}
	if err != nil {
		w.f.Close()
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return w.f.Close()
}

func (w *FileWriter) flush() error {
	if w.labeled {
		if len(w.lbuf) == 0 {
			return nil
		}
		if _, err := w.lw.Write(w.lbuf); err != nil {
			return fmt.Errorf("parquet: write batch: %w", err)
		}
		w.lbuf = w.lbuf[:0]
		return nil
	}
	if len(w.ubuf) == 0 {
		return nil
	}
	if _, err := w.uw.Write(w.ubuf); err != nil {
		return fmt.Errorf("parquet: write batch: %w", err)
	}
	w.ubuf = w.ubuf[:0]
	return nil
}

// fillConnection assigns positional values onto c's fields in declaration
// order, converting from whatever Go types the database driver produced.
func fillConnection(c *Connection, vals []any) error {
	rv := reflect.ValueOf(c).Elem()
	if len(vals) != rv.NumField() {
		return fmt.Errorf("parquet: row has %d values, want %d", len(vals), rv.NumField())
	}

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.String:
			s, err := asString(vals[i])
			if err != nil {
				return fmt.Errorf("parquet: column %d: %w", i, err)
			}
			field.SetString(s)
		case reflect.Float32:
			f, err := asFloat(vals[i])
			if err != nil {
				return fmt.Errorf("parquet: column %d: %w", i, err)
			}
			field.SetFloat(float64(f))
		case reflect.Int16:
			n, err := asShort(vals[i])
			if err != nil {
				return fmt.Errorf("parquet: column %d: %w", i, err)
			}
			field.SetInt(int64(n))
		default:
			return fmt.Errorf("parquet: unsupported field kind %s", field.Kind())
		}
	}
	return nil
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", v)
	}
}

func asFloat(v any) (float32, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return float32(x), nil
	case float32:
		return x, nil
	case int64:
		return float32(x), nil
	case int32:
		return float32(x), nil
	case int16:
		return float32(x), nil
	case int:
		return float32(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 32)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float: %w", x, err)
		}
		return float32(f), nil
	case []byte:
		return asFloat(string(x))
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

func asShort(v any) (int16, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int16(x), nil
	case int32:
		return int16(x), nil
	case int16:
		return x, nil
	case int:
		return int16(x), nil
	case float64:
		return int16(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as short: %w", x, err)
		}
		return int16(n), nil
	case []byte:
		return asShort(string(x))
	default:
		return 0, fmt.Errorf("cannot convert %T to short", v)
	}
}
