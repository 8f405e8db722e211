// Package schema declares the fixed connection-record schema shared by the
// whole pipeline.
//
// A record is one network-connection observation from the KDD Cup '99
// intrusion-detection corpus: 41 numeric/categorical features plus the
// synthetic id column injected during stream preparation, plus a trailing
// label column that only the labeled dataset carries.
//
// The column list and types mirror the warehouse DDL; every consumer
// (stream prep width checks, staging DDL, typed loading, Parquet
// materialization) derives its view from this single definition so the
// pieces cannot drift apart.
package schema

// Kind is the logical type of a column. It maps onto backend-specific SQL
// types and Parquet physical types at the edges.
type Kind string

const (
	// String is free text (protocol names, service names, TCP flags, ids).
	String Kind = "string"
	// Float is a 32-bit floating point feature (counts, rates, byte totals).
	Float Kind = "float"
	// Short is a small integer flag feature (0/1 indicators).
	Short Kind = "short"
)

// Field describes one column of the connection schema.
type Field struct {
	Name string
	Kind Kind
}

// IDColumn is the synthetic identifier injected during stream preparation:
// a single-letter source tag followed by a run-local monotonic counter.
const IDColumn = "id"

// LabelColumn is the trailing class label present only in the labeled dataset.
const LabelColumn = "label"

// features lists the 41 KDD connection features in wire order. The raw CSV
// files carry exactly these columns (plus label for the labeled set); the
// id column does not exist until stream prep injects it.
var features = []Field{
	{Name: "duration", Kind: Float},
	{Name: "protocol_type", Kind: String},
	{Name: "service", Kind: String},
	{Name: "flag", Kind: String},
	{Name: "src_bytes", Kind: Float},
	{Name: "dst_bytes", Kind: Float},
	{Name: "land", Kind: Short},
	{Name: "wrong_fragment", Kind: Float},
	{Name: "urgent", Kind: Float},
	{Name: "hot", Kind: Float},
	{Name: "num_failed_logins", Kind: Float},
	{Name: "logged_in", Kind: Short},
	{Name: "num_compromised", Kind: Float},
	{Name: "root_shell", Kind: Float},
	{Name: "su_attempted", Kind: Float},
	{Name: "num_root", Kind: Float},
	{Name: "num_file_creations", Kind: Float},
	{Name: "num_shells", Kind: Float},
	{Name: "num_access_files", Kind: Float},
	{Name: "num_outbound_cmds", Kind: Float},
	{Name: "is_host_login", Kind: Short},
	{Name: "is_guest_login", Kind: Short},
	{Name: "count", Kind: Float},
	{Name: "srv_count", Kind: Float},
	{Name: "serror_rate", Kind: Float},
	{Name: "srv_serror_rate", Kind: Float},
	{Name: "rerror_rate", Kind: Float},
	{Name: "srv_rerror_rate", Kind: Float},
	{Name: "same_srv_rate", Kind: Float},
	{Name: "diff_srv_rate", Kind: Float},
	{Name: "srv_diff_host_rate", Kind: Float},
	{Name: "dst_host_count", Kind: Float},
	{Name: "dst_host_srv_count", Kind: Float},
	{Name: "dst_host_same_srv_rate", Kind: Float},
	{Name: "dst_host_diff_srv_rate", Kind: Float},
	{Name: "dst_host_same_src_port_rate", Kind: Float},
	{Name: "dst_host_srv_diff_host_rate", Kind: Float},
	{Name: "dst_host_serror_rate", Kind: Float},
	{Name: "dst_host_srv_serror_rate", Kind: Float},
	{Name: "dst_host_rerror_rate", Kind: Float},
	{Name: "dst_host_srv_rerror_rate", Kind: Float},
}

// NumFeatures is the number of raw feature columns (no id, no label).
func NumFeatures() int { return len(features) }

// RawWidth returns the expected column count of a raw (pre-id) CSV row.
func RawWidth(labeled bool) int {
	if labeled {
		return len(features) + 1
	}
	return len(features)
}

// Columns returns the full ordered column list for a prepared dataset:
// id first, then the 41 features, then label when labeled is true.
func Columns(labeled bool) []Field {
	out := make([]Field, 0, len(features)+2)
	out = append(out, Field{Name: IDColumn, Kind: String})
	out = append(out, features...)
	if labeled {
		out = append(out, Field{Name: LabelColumn, Kind: String})
	}
	return out
}

// ColumnNames returns the names from Columns(labeled) in order.
func ColumnNames(labeled bool) []string {
	cols := Columns(labeled)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
