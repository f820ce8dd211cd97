// Package metrics holds the Prometheus collectors of the indexer.
package metrics

const (
	namespace = "ledgerindex"
	unknown   = "unknown"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return unknown
	}
	return v
}
