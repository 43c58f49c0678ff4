package entropy

import (
	"fmt"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// Symbols checks that decoded JSON values are scalars usable as symbols.
// Strings, numbers, booleans and null are accepted; arrays and objects are
// not comparable and are rejected. Booleans are mapped to 0 and 1, so true
// and 1 denote the same symbol.
func Symbols(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil, string, float64:
			out[i] = v
		case bool:
			if v {
				out[i] = 1.0
			} else {
				out[i] = 0.0
			}
		default:
			return nil, fmt.Errorf("symbol %d: unsupported type %T: %w", i, v, domain.ErrDomain)
		}
	}
	return out, nil
}
