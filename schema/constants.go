package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// Resolution represents the time resolution requested from the modeling service.
	Resolution string

	// ChartKind represents a chart produced by the renderer.
	ChartKind string

	// Stage names a pipeline stage for run tracking.
	Stage string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All resolutions supported.
const (
	HourlyResolution  Resolution = "hourly" // default
	MonthlyResolution Resolution = "monthly"
)

// All chart kinds supported.
const (
	GridChart       ChartKind = "grid"
	ViolinChart     ChartKind = "violin"
	ThresholdChart  ChartKind = "thresholds"
	ComparisonChart ChartKind = "comparison"
)

// All tracked stages.
const (
	FetchStage     Stage = "fetch"
	NormalizeStage Stage = "normalize"
	CompareStage   Stage = "compare"
	ThresholdStage Stage = "threshold"
	DeviationStage Stage = "deviation"
	FleetStage     Stage = "fleet"
	RenderStage    Stage = "render"
)

// Calendar bounds of the canonical key.
const (
	HoursPerDay         = 24
	MonthsPerYear       = 12
	MaxBucketsPerSeries = HoursPerDay * MonthsPerYear
)

// CombinedSeries is the series id given to a summed variant.
const CombinedSeries = "combined"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidResolutions lists all valid resolutions.
var ValidResolutions = map[Resolution]struct{}{
	HourlyResolution:  {},
	MonthlyResolution: {},
}

// MonthNames holds English month names indexed by month number minus one.
var MonthNames = [MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}
