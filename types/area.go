package types

import (
	"fmt"
	"strings"
)

type Area string

const (
	AreaSE1 Area = "SE1" // Luleå
	AreaSE2 Area = "SE2" // Sundsvall
	AreaSE3 Area = "SE3" // Stockholm
	AreaSE4 Area = "SE4" // Malmö
)

var Areas = []Area{AreaSE1, AreaSE2, AreaSE3, AreaSE4}

func ParseArea(s string) (Area, error) {
	a := Area(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Areas {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown price area %q", s)
}

func (a Area) String() string {
	return string(a)
}
