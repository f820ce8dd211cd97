package httpapi

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type Metrics interface {
	ObserveRequest(route string, code int, started time.Time)
}
