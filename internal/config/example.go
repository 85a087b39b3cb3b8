package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# vine configuration file
# Values can be overridden by VINE_* environment variables or CLI flags

# Graph document (relative to the working directory)
graph_file = "plan.vine"

# Accept documents written before the magic line existed
allow_legacy = false

# Default format for "vine export": json or yaml
export_format = "json"

# Order of "vine ready": order, priority (@priority annotation),
# unblocking (most dependants first) or mixed
ready_strategy = "order"

# Files checked at once by validate and fmt -check; 0 means one per CPU
jobs = 0

# Logging: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

log_timestamps = false
log_caller = false
`
}
