package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"briclab/afm/pkg/config"
	"briclab/afm/pkg/scan"
)

// ParseOps parses a comma separated operation pipeline. Plain names select
// parameterless operations. Conformal takes a thickness and an optional
// scale, as in "plane_level,min_to_zero,conformal:300:1e9". An empty
// string is a valid empty pipeline.
func ParseOps(s string) ([]scan.Operation, error) {
	if s == "" {
		return nil, nil
	}

	re := regexp.MustCompile(`^([a-z_]+)(?::([^:]+))?(?::([^:]+))?$`)

	var operations []scan.Operation
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)

		matches := re.FindStringSubmatch(part)
		if matches == nil {
			return nil, parsingError(part)
		}

		spec := config.OpSpec{Name: matches[1], Scale: 1}
		if matches[2] != "" {
			if spec.Name != config.OpConformal {
				return nil, parsingError(part)
			}

			v, err := strconv.ParseFloat(matches[2], 64)
			if err != nil {
				return nil, parsingError(part)
			}
			spec.Thickness = v
		}
		if matches[3] != "" {
			v, err := strconv.ParseFloat(matches[3], 64)
			if err != nil {
				return nil, parsingError(part)
			}
			spec.Scale = v
		}

		op, err := spec.Operation()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %s", part, err)
		}

		operations = append(operations, op)
	}

	return operations, nil
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'name' or 'conformal:thickness[:scale]'", s)
}
