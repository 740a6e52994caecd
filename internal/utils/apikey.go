package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SiteKeyPrefix marks every site API key this system generates.
const SiteKeyPrefix = "ic_"

// NewSiteKey generates an opaque site API key of the form
// ic_<unix-millis>_<random>. Uniqueness is probabilistic, not enforced;
// the timestamp half makes collisions across seconds impossible and the
// random half covers keys minted in the same millisecond.
func NewSiteKey(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", SiteKeyPrefix, now.UnixMilli(), random)
}
