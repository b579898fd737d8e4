package source

import (
	"fmt"
	"strings"

	"github.com/icodeforyou/elpris-go/elprisetjustnu"
	"github.com/icodeforyou/elpris-go/nordpool"
	"github.com/icodeforyou/elpris-go/types"
)

// Providers builds the named providers, in the given order.
func Providers(names []string) ([]types.PriceProvider, error) {
	providers := make([]types.PriceProvider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "elprisetjustnu":
			providers = append(providers, elprisetjustnu.New())
		case "nordpool":
			providers = append(providers, nordpool.New())
		default:
			return nil, fmt.Errorf("unknown price provider %q", name)
		}
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no price providers configured")
	}
	return providers, nil
}
