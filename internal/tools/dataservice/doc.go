// Package dataservice provides the tools that query databases through the
// HMAC-authenticated data service.
//
// Callers name an environment instead of passing a URL and credentials. The
// environment is looked up in the embedded registry and its credentials are
// read from DATA_EXPLORER_<ENV>_MODULE_NAME and DATA_EXPLORER_<ENV>_SECRET,
// falling back to DATA_EXPLORER_MODULE_NAME and DATA_EXPLORER_SECRET.
//
// Tools:
//   - query_data_explorer runs one SQL statement against a database
//   - list_dbnames lists the databases visible to the configured module
//   - list_tables lists the tables of a database
//   - show_table_ddl returns the CREATE TABLE statement of a table
//   - list_environments lists the known environments without any network call
//
// # Usage Examples
//
//	{
//	  "env_name": "sg_test",
//	  "dbname": "orders_db",
//	  "sql": "SELECT id, status FROM orders ORDER BY id DESC LIMIT 10"
//	}
package dataservice
