package counter

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

func parseDay(s string) (time.Time, error) {
	t, err := clock.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", model.ErrInvalidArgument, s)
	}
	return t, nil
}
