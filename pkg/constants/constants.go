package constants

// Agent
const (
	AgentAppName   = "DJ_AGENT"
	AgentEnvPrefix = AgentAppName
	CommandName    = "dj-agent"
)

// Object store
const (
	S3Scheme = "s3"
	// S3URLPrefix is what every already-remote leaf starts with.
	S3URLPrefix = S3Scheme + "://"
)

// Dataset fields produced by upstream operators. They are pruned before export
// unless the export config asks to keep them.
const (
	StatsField = "__dj__stats__"
	MetaField  = "__dj__meta__"

	HashField      = "__dj__hash"
	MinHashField   = "__dj__minhash"
	SimHashField   = "__dj__simhash"
	ImageHashField = "__dj__imagehash"
	VideoHashField = "__dj__videohash"

	// WebDatasetKeyField names the tar member prefix of a webdataset sample.
	WebDatasetKeyField = "__key__"
)

// HashFields lists every hash column pruned together.
var HashFields = []string{HashField, MinHashField, SimHashField, ImageHashField, VideoHashField}

// Operator names used in logs and metric labels.
const (
	S3DownloadOperator = "s3_download_file_mapper"
	S3UploadOperator   = "s3_upload_file_mapper"
)

// DefaultIDField is the record field logged as the record identifier.
const DefaultIDField = "id"
