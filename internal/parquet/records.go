// Package parquet materializes warehouse tables as parquet files.
//
// Connection and LabeledConnection mirror the table column order exactly
// (id first, label last); the writer fills them positionally, so their field
// order must track the schema package.
package parquet

// Connection is one unlabeled connection record.
type Connection struct {
	ID                     string  `parquet:"id"`
	Duration               float32 `parquet:"duration"`
	ProtocolType           string  `parquet:"protocol_type"`
	Service                string  `parquet:"service"`
	Flag                   string  `parquet:"flag"`
	SrcBytes               float32 `parquet:"src_bytes"`
	DstBytes               float32 `parquet:"dst_bytes"`
	Land                   int16   `parquet:"land"`
	WrongFragment          float32 `parquet:"wrong_fragment"`
	Urgent                 float32 `parquet:"urgent"`
	Hot                    float32 `parquet:"hot"`
	NumFailedLogins        float32 `parquet:"num_failed_logins"`
	LoggedIn               int16   `parquet:"logged_in"`
	NumCompromised         float32 `parquet:"num_compromised"`
	RootShell              float32 `parquet:"root_shell"`
	SuAttempted            float32 `parquet:"su_attempted"`
	NumRoot                float32 `parquet:"num_root"`
	NumFileCreations       float32 `parquet:"num_file_creations"`
	NumShells              float32 `parquet:"num_shells"`
	NumAccessFiles         float32 `parquet:"num_access_files"`
	NumOutboundCmds        float32 `parquet:"num_outbound_cmds"`
	IsHostLogin            int16   `parquet:"is_host_login"`
	IsGuestLogin           int16   `parquet:"is_guest_login"`
	Count                  float32 `parquet:"count"`
	SrvCount               float32 `parquet:"srv_count"`
	SerrorRate             float32 `parquet:"serror_rate"`
	SrvSerrorRate          float32 `parquet:"srv_serror_rate"`
	RerrorRate             float32 `parquet:"rerror_rate"`
	SrvRerrorRate          float32 `parquet:"srv_rerror_rate"`
	SameSrvRate            float32 `parquet:"same_srv_rate"`
	DiffSrvRate            float32 `parquet:"diff_srv_rate"`
	SrvDiffHostRate        float32 `parquet:"srv_diff_host_rate"`
	DstHostCount           float32 `parquet:"dst_host_count"`
	DstHostSrvCount        float32 `parquet:"dst_host_srv_count"`
	DstHostSameSrvRate     float32 `parquet:"dst_host_same_srv_rate"`
	DstHostDiffSrvRate     float32 `parquet:"dst_host_diff_srv_rate"`
	DstHostSameSrcPortRate float32 `parquet:"dst_host_same_src_port_rate"`
	DstHostSrvDiffHostRate float32 `parquet:"dst_host_srv_diff_host_rate"`
	DstHostSerrorRate      float32 `parquet:"dst_host_serror_rate"`
	DstHostSrvSerrorRate   float32 `parquet:"dst_host_srv_serror_rate"`
	DstHostRerrorRate      float32 `parquet:"dst_host_rerror_rate"`
	DstHostSrvRerrorRate   float32 `parquet:"dst_host_srv_rerror_rate"`
}

// LabeledConnection is one labeled connection record.
type LabeledConnection struct {
	Connection
	Label string `parquet:"label"`
}
