package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/pagination"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
)

func parseUint(name, raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", model.ErrInvalidArgument, name)
	}
	return v, nil
}

func parsePageRequest(r *http.Request) (pagination.Request, error) {
	qs := r.URL.Query()
	req := pagination.Request{
		FirstEvaluatedKey: qs.Get("firstEvaluatedKey"),
		LastEvaluatedKey:  qs.Get("lastEvaluatedKey"),
	}
	if v := qs.Get("itemsPerPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return req, fmt.Errorf("%w: itemsPerPage must be a positive integer", model.ErrInvalidArgument)
		}
		req.ItemsPerPage = n
	}
	return req, nil
}

func parseConfirmation(r *http.Request) (explorer.Confirmation, error) {
	qs := r.URL.Query()
	var c explorer.Confirmation
	if v := qs.Get("onlyConfirmed"); v != "" {
		only, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%w: onlyConfirmed must be a boolean", model.ErrInvalidArgument)
		}
		c.Only = only
	}
	if v := qs.Get("confirmThreshold"); v != "" {
		threshold, err := parseUint("confirmThreshold", v)
		if err != nil {
			return c, err
		}
		c.Threshold = threshold
	}
	return c, nil
}

// parseTxType accepts any modeled tag and "unknown"; an empty value means no filter.
func parseTxType(r *http.Request) (model.TxType, error) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return "", nil
	}
	t := model.ParseTxType(raw)
	if t == model.TxUnknown && raw != string(model.TxUnknown) {
		return "", fmt.Errorf("%w: unsupported transaction type %q", model.ErrInvalidArgument, raw)
	}
	return t, nil
}
