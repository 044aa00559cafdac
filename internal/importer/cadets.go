package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

// traineeTypeCodes is the canonical code list, sorted for deterministic
// issue messages
var traineeTypeCodes = func() []string {
	codes := make([]string, 0, len(models.TraineeTypes))
	for code := range models.TraineeTypes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}()

// cadetSpec configures the import pipeline for cadet rows
func cadetSpec() *Spec {
	return &Spec{
		Entity: "cadets",
		Columns: []string{"full_name", "email", "trainee_type", "nationality", "notes"},

		LoadRefs: func(ctx context.Context, repos *repository.Repositories) (*Reference, error) {
			emails, err := repos.Cadet.EmailIndex(ctx)
			if err != nil {
				return nil, err
			}
			return &Reference{CadetIDByEmail: emails}, nil
		},

		Normalize: func(input map[string]string) map[string]interface{} {
			return map[string]interface{}{
				"full_name":    stringCell(input["full_name"]),
				"email":        emailCell(input["email"]),
				"trainee_type": stringCell(input["trainee_type"]),
				"nationality":  stringCell(input["nationality"]),
				"notes":        stringCell(input["notes"]),
			}
		},

		Classify: func(row *Row, refs *Reference) {
			var fails, skips, warns []string

			fullName := asString(row.Normalized["full_name"])
			email := asString(row.Normalized["email"])
			traineeType := asString(row.Normalized["trainee_type"])

			if fullName == "" {
				fails = append(fails, "full_name is required")
			}
			if email == "" {
				fails = append(fails, "email is required")
			} else if !emailRegex.MatchString(email) {
				fails = append(fails, fmt.Sprintf("invalid email format: %s", email))
			}

			code, exact, matched := "", false, false
			if traineeType == "" {
				fails = append(fails, "trainee_type is required")
			} else {
				code, exact, matched = fuzzyMatch(traineeType, traineeTypeCodes)
				if !matched {
					fails = append(fails, fmt.Sprintf("unknown trainee_type %q; must be one of: %s",
						traineeType, strings.Join(traineeTypeCodes, ", ")))
				}
			}

			if matched {
				profile := models.TraineeTypes[code]
				row.Derived = map[string]interface{}{
					"trainee_type": code,
					"rank_label":   profile.RankLabel,
					"category":     profile.Category,
					"trb_required": profile.TRBRequired,
				}
				if !exact {
					warns = append(warns, fmt.Sprintf("trainee_type %q interpreted as %q", traineeType, code))
				}
			}

			if email != "" {
				if _, exists := refs.CadetIDByEmail[email]; exists {
					skips = append(skips, fmt.Sprintf("email already registered: %s", email))
				}
			}
			if asString(row.Normalized["nationality"]) == "" {
				warns = append(warns, "nationality not provided")
			}

			resolve(row, fails, skips, warns)
		},

		Key: func(row *Row) string {
			return asString(row.Normalized["email"])
		},

		Create: func(ctx context.Context, tx repository.ImportTx, row *Row) (string, error) {
			trbRequired, _ := row.Derived["trb_required"].(bool)
			cadet := &models.Cadet{
				ID:          uuid.New().String(),
				FullName:    asString(row.Normalized["full_name"]),
				Email:       asString(row.Normalized["email"]),
				TraineeType: asString(row.Derived["trainee_type"]),
				RankLabel:   asString(row.Derived["rank_label"]),
				Nationality: asString(row.Normalized["nationality"]),
				TRBRequired: trbRequired,
				Notes:       asString(row.Normalized["notes"]),
			}
			if err := tx.CreateCadet(ctx, cadet); err != nil {
				return "", err
			}
			return cadet.ID, nil
		},
	}
}
