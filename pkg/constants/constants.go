package constants

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)

const (
	// RPCPath is the path segment SurrealDB serves its RPC endpoint on.
	RPCPath = "/rpc"

	// CloudHostSuffix identifies managed SurrealDB Cloud instances.
	CloudHostSuffix = ".surreal.cloud"

	StatusOK  = "OK"
	StatusERR = "ERR"
)

// Resources
const (
	ResourceRecord = "record"
	ResourceTable  = "table"
	ResourceIndex  = "index"
	ResourceQuery  = "query"
	ResourceSystem = "system"
)

// Operations
const (
	OpCreate     = "create"
	OpGet        = "get"
	OpUpdate     = "update"
	OpMerge      = "merge"
	OpUpsert     = "upsert"
	OpDelete     = "delete"
	OpCreateMany = "createMany"
	OpGetAll     = "getAll"
	OpGetMany    = "getMany"

	OpCreateTable = "createTable"
	OpDeleteTable = "deleteTable"
	OpListTables  = "listTables"
	OpGetTable    = "getTable"

	OpCreateIndex   = "createIndex"
	OpDropIndex     = "dropIndex"
	OpListIndexes   = "listIndexes"
	OpDescribeIndex = "describeIndex"
	OpRebuildIndex  = "rebuildIndex"

	OpExecuteQuery = "executeQuery"

	OpHealthCheck = "healthCheck"
	OpVersion     = "version"
)
