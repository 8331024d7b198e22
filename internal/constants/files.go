package constants

// Input file extensions discovered in the working directory.
const (
	CaptureFileExtension = "pcapng"
	TrackFileExtension   = "nmea"
	HashFileExtension    = "22000"
)

// Default output file names.
const (
	DefaultCSVOutput    = "wifi_aps.csv"
	DefaultKMLOutput    = "wifi_aps.kml"
	DefaultWigleOutput  = "wifi_aps_wigle.csv"
	DefaultSQLiteOutput = "wifi_aps.db"

	// FilteredSuffix is inserted before the extension of filtered outputs.
	FilteredSuffix = "_filtered"
)

// DefaultConfigFile is read when present and no --config flag is given.
const DefaultConfigFile = "configs/config.yaml"
