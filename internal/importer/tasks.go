package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

// taskSpec configures the import pipeline for training task rows
func taskSpec() *Spec {
	return &Spec{
		Entity: "tasks",
		Columns: []string{"part_number", "title", "ship_type_name"},

		LoadRefs: func(ctx context.Context, repos *repository.Repositories) (*Reference, error) {
			keys, err := repos.Task.KeyIndex(ctx)
			if err != nil {
				return nil, err
			}
			shipTypes, err := repos.Task.ShipTypes(ctx)
			if err != nil {
				return nil, err
			}
			return &Reference{TaskKeys: keys, ShipTypes: shipTypes}, nil
		},

		Normalize: func(input map[string]string) map[string]interface{} {
			return map[string]interface{}{
				"part_number":    codeCell(input["part_number"]),
				"title":          stringCell(input["title"]),
				"ship_type_name": stringCell(input["ship_type_name"]),
			}
		},

		Classify: func(row *Row, refs *Reference) {
			var fails, skips, warns []string

			part := asString(row.Normalized["part_number"])
			title := asString(row.Normalized["title"])
			shipType := asString(row.Normalized["ship_type_name"])

			if part == "" {
				fails = append(fails, "part_number is required")
			}
			if title == "" {
				fails = append(fails, "title is required")
			}

			canonical := ""
			if shipType == "" {
				fails = append(fails, "ship_type_name is required")
			} else {
				match, exact, matched := fuzzyMatch(shipType, refs.ShipTypes)
				if !matched {
					fails = append(fails, fmt.Sprintf("unknown ship_type_name %q; must be one of: %s",
						shipType, strings.Join(refs.ShipTypes, ", ")))
				} else {
					canonical = match
					if !exact {
						warns = append(warns, fmt.Sprintf("ship_type_name %q interpreted as %q", shipType, canonical))
					}
				}
			}

			if part != "" && title != "" && canonical != "" {
				key := models.TaskKey(part, title, canonical)
				row.Derived = map[string]interface{}{
					"ship_type_name": canonical,
					"task_key":       key,
				}
				if refs.TaskKeys[key] {
					skips = append(skips, fmt.Sprintf("task %s %q already defined for %s", part, title, canonical))
				}
			}

			resolve(row, fails, skips, warns)
		},

		Key: func(row *Row) string {
			return asString(row.Derived["task_key"])
		},

		Create: func(ctx context.Context, tx repository.ImportTx, row *Row) (string, error) {
			task := &models.TrainingTask{
				ID:         uuid.New().String(),
				PartNumber: asString(row.Normalized["part_number"]),
				Title:      asString(row.Normalized["title"]),
				ShipType:   asString(row.Derived["ship_type_name"]),
			}
			if err := tx.CreateTask(ctx, task); err != nil {
				return "", err
			}
			return task.ID, nil
		},
	}
}
