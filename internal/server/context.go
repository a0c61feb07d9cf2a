package server

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	EnvPath      string // path to the credentials env file
	DatasetsPath string // external dataset registry (optional)
	ReportsDir   string
}
