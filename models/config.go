package models

type Config struct {
	Debug bool `envconfig:"VARBROWSER_DEBUG" default:"false"`

	Api struct {
		Port           string `envconfig:"VARBROWSER_API_PORT" default:"5000"`
		SeedPath       string `envconfig:"VARBROWSER_SEED_PATH"`
		ServiceContact string `envconfig:"VARBROWSER_SERVICE_CONTACT" default:"mailto:variants@example.org"`
		SemVer         string `envconfig:"VARBROWSER_SEMVER" default:"0.1.0"`
	}
	Store struct {
		Backend string `envconfig:"VARBROWSER_STORE_BACKEND" default:"duckdb"`
	}
	DuckDb struct {
		// empty path keeps the database in memory
		Path string `envconfig:"VARBROWSER_DUCKDB_PATH"`
	}
	Elasticsearch struct {
		Url         string `envconfig:"VARBROWSER_ES_URL" default:"http://localhost:9200"`
		Username    string `envconfig:"VARBROWSER_ES_USERNAME"`
		Password    string `envconfig:"VARBROWSER_ES_PASSWORD"`
		IndexPrefix string `envconfig:"VARBROWSER_ES_INDEX_PREFIX" default:"varbrowser"`
	}
	Cache struct {
		MaxEntries int64 `envconfig:"VARBROWSER_CACHE_MAX_ENTRIES" default:"100000"`
	}
	Sanitation struct {
		Enabled bool   `envconfig:"VARBROWSER_SANITATION_ENABLED" default:"true"`
		At      string `envconfig:"VARBROWSER_SANITATION_AT" default:"04:00:00"`
	}
}
