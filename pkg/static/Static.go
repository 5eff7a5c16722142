package static

// Instance layout
const (
	ETCDIR  = "etc"
	CONFDIR = "conf"
	DATADIR = "data"

	LOCKFILE = "instance.lock"
	LINKFILE = "instance.link"
)

// Files under etc/ storing the effective properties of the last deploy
const (
	FRAMEWORK_PROPERTIES = "framework.properties"
	LAUNCHING_PROPERTIES = "launching.properties"
	SYSTEM_PROPERTIES    = "system.properties"
)

// Properties injected into the framework properties before creating the container
const (
	PROPERTY_INSTANCE_ROOT     = "sml.instance"
	PROPERTY_INSTANCE_CONF     = "sml.instance.configuration"
	PROPERTY_LAUNCH_ARGUMENTS  = "sml.launch.arguments"
	PROPERTY_CONTAINER_STORAGE = "container.storage"

	// Stripped on the start command so a restart never wipes the data area
	PROPERTY_CONTAINER_STORAGE_CLEAN = "container.storage.clean"
)

// Launching properties recognized by the launcher itself
const (
	PROPERTY_SHUTDOWN_TIMEOUT = "shutdown.timeout"
	PROPERTY_ARGUMENTS_PID    = "arguments.service.pid"
)

// Deployment properties recognized per bundle source
const (
	DEPLOYMENT_PROPERTIES = "deployment.properties"

	PROPERTY_BUNDLE_LOCATION_ROOT = "bundle.location.root"
	PROPERTY_DEPLOYMENT_ACTION    = "deployment.action"
	PROPERTY_DEPLOYMENT_SEARCH    = "deployment.search"
	PROPERTY_START_LEVEL          = "start.level"

	SCOPED_BUNDLE_LOCATION   = "bundle.location@"
	SCOPED_DEPLOYMENT_ACTION = PROPERTY_DEPLOYMENT_ACTION + "@"
	SCOPED_START_LEVEL       = PROPERTY_START_LEVEL + "@"
)

// Exit codes
const (
	EXIT_SUCCESS   = 0
	EXIT_RUNTIME   = 1
	EXIT_SYNTAX    = 2
	EXIT_CONFIG    = 3
	EXIT_EXECUTION = 4
)

// Environment variables honored by the wrapper scripts and the launcher
const (
	ENV_LOGGING_FILE  = "SML_LOGGING_FILE"
	ENV_LOGGING_LEVEL = "SML_LOGGING_LEVEL"
	ENV_FILE          = "SML_ENV_FILE"
)

// Default Log Level
const DEFAULT_LOG_LEVEL = "info"

// Remote command verbs
const COMMAND_STOP = "stop"
