package models

// Config holds the settings loaded from config.json, with environment
// overrides applied in database.LoadConfig.
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	GeocoderURL    string `json:"geocoder_url"`     // Nominatim-compatible /search endpoint
	PlaceSearchURL string `json:"place_search_url"` // text-search endpoint for venue lookup
	PlaceAPIKey    string `json:"place_api_key"`

	GlobalSlotCap int `json:"global_slot_cap"` // 0 means the default of 5
}
