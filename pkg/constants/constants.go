// Package constants provides shared constants for the sixsigma-portal application.
package constants

// Company details shown on every page.
const (
	CompanyName  = "Six Sigma Services"
	CompanyPhone = "+91-7397834578"
	CompanyEmail = "sixsigmaservices01@gmail.com"
)

// Collection names. Each is the storage key of one JSON array of records.
const (
	// CustomerCollection holds applications submitted directly by customers.
	CustomerCollection = "customerData"

	// EmployeeCollection holds employee accounts (credentials and bank details).
	EmployeeCollection = "employeeData"

	// EmployeeCustomerCollection holds applications entered by employees on behalf of customers.
	EmployeeCustomerCollection = "employeeCustomerData"
)

// Collections lists every collection name in display order.
var Collections = []string{CustomerCollection, EmployeeCollection, EmployeeCustomerCollection}

// TimestampLayout is the ISO-8601 UTC layout with millisecond precision used for
// submissionDate and registrationDate values.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Export format constants
const (
	// ExportFormatXLSX writes an Excel workbook
	ExportFormatXLSX = "xlsx"

	// ExportFormatCSV is the CSV output format
	ExportFormatCSV = "csv"

	// ExportFormatPretty is the human-readable output format
	ExportFormatPretty = "pretty"
)

// Storage driver names
const (
	StorageMemory = "memory"
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
	StorageSQL    = "sql"
)

// DefaultBoltBucket is the bucket holding all collections in a bolt file.
const DefaultBoltBucket = "localStorage"

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultEnvFile is the optional dotenv file loaded before the configuration
	DefaultEnvFile = ".env"

	// EnvPrefix prefixes environment variable overrides, e.g. SIXSIGMA_SERVER_ADDRESS.
	EnvPrefix = "SIXSIGMA"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxFormSizeBytes is the default maximum size of a submitted form body (64 KB)
	DefaultMaxFormSizeBytes int64 = 64 * 1024

	// DefaultSessionCookie is the name of the employee session cookie
	DefaultSessionCookie = "sixsigma_employee"
)
