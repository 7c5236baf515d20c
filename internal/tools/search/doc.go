// Package search provides the Elasticsearch query tool.
//
// The query_elasticsearch_via_kibana tool logs in to a Kibana instance with
// the supplied credentials and forwards one request to Elasticsearch through
// the Kibana console proxy. The decoded response can be narrowed with a jq
// expression before it is governed. Results larger than the configured token
// budget are written to a file and the tool returns a spill descriptor.
//
// # Usage Examples
//
// List the indices of a cluster and keep only the names:
//
//	{
//	  "base_url": "https://kibana.example.com",
//	  "username": "reader",
//	  "password": "secret",
//	  "path": "_cat/indices?format=json",
//	  "jq_query": "[.[] | .index]"
//	}
//
// Search an index pattern:
//
//	{
//	  "base_url": "https://kibana.example.com",
//	  "username": "",
//	  "password": "",
//	  "path": "logs-*/_search",
//	  "query": "{\"size\": 5, \"query\": {\"match\": {\"level\": \"error\"}}}"
//	}
package search
