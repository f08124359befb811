package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

// LoadPlan reads a migration plan from a YAML file. An empty path returns
// the built-in plan.
func LoadPlan(path string) (*model.Plan, error) {
	if path == "" {
		return model.DefaultPlan(), nil
	}

	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Mark(fmt.Errorf("%s", path), apperrors.ErrPlanNotFound)
		}
		return nil, apperrors.Mark(fmt.Errorf("read plan %s: %w", path, err), apperrors.ErrInvalidConfig)
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan decodes, defaults and validates a YAML plan. Unknown keys are
// rejected.
func ParsePlan(data []byte) (*model.Plan, error) {
	var plan model.Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Mark(fmt.Errorf("parse YAML: %w", err), apperrors.ErrInvalidConfig)
	}

	setPlanDefaults(&plan)

	if err := Validate(&plan); err != nil {
		return nil, err
	}
	if err := checkDuplicates(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func setPlanDefaults(plan *model.Plan) {
	plan.KeyColumn = strings.TrimSpace(plan.KeyColumn)
	if plan.KeyColumn == "" {
		plan.KeyColumn = model.DefaultKeyColumn
	}
	for i := range plan.Tables {
		plan.Tables[i].Name = strings.TrimSpace(plan.Tables[i].Name)
		plan.Tables[i].ConflictKey = strings.TrimSpace(plan.Tables[i].ConflictKey)
	}
	for i := range plan.Sequences {
		plan.Sequences[i] = strings.TrimSpace(plan.Sequences[i])
	}
	if len(plan.Sequences) == 0 {
		plan.Sequences = plan.TableNames()
	}
}

func checkDuplicates(plan *model.Plan) error {
	if name, ok := firstDuplicate(plan.TableNames()); ok {
		return apperrors.Mark(apperrors.InvalidField("tables", "duplicate table "+name), apperrors.ErrInvalidConfig)
	}
	if name, ok := firstDuplicate(plan.Sequences); ok {
		return apperrors.Mark(apperrors.InvalidField("sequences", "duplicate table "+name), apperrors.ErrInvalidConfig)
	}
	return nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return name, true
		}
		seen[name] = true
	}
	return "", false
}
